// package imagestore manages the image files a node has captured:
// enumeration, size accounting, and deletion within one base directory.
package imagestore

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/domain"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

var _ secondary.ImageStore = (*Manager)(nil)

// Manager is the filesystem-backed image store.
type Manager struct {
	baseDir string
}

// NewManager creates a store rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// EnsureDir creates the base directory if it does not exist.
func (m *Manager) EnsureDir() error {
	return os.MkdirAll(m.baseDir, 0o755)
}

// List returns the image filenames in the base directory.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if imageExtensions[ext] {
			images = append(images, entry.Name())
		}
	}
	return images, nil
}

// Info returns counts, sizes and per-file details.
func (m *Manager) Info() (*domain.ImageInventory, error) {
	images, err := m.List()
	if err != nil {
		return nil, err
	}

	inventory := &domain.ImageInventory{Files: make([]domain.ImageFileInfo, 0, len(images))}
	for _, name := range images {
		info, err := os.Stat(filepath.Join(m.baseDir, name))
		if err != nil {
			continue
		}
		inventory.Count++
		inventory.TotalSizeBytes += info.Size()
		inventory.Files = append(inventory.Files, domain.ImageFileInfo{
			Name:   name,
			Size:   info.Size(),
			SizeMB: roundMB(info.Size()),
		})
	}
	inventory.TotalSizeMB = roundMB(inventory.TotalSizeBytes)
	return inventory, nil
}

// DeleteAll removes every image file, collecting per-item errors.
func (m *Manager) DeleteAll() (int, []string) {
	images, err := m.List()
	if err != nil {
		return 0, []string{err.Error()}
	}

	deleted := 0
	var deleteErrors []string
	for _, name := range images {
		if err := os.Remove(filepath.Join(m.baseDir, name)); err != nil {
			deleteErrors = append(deleteErrors, fmt.Sprintf("Failed to delete %s: %v", name, err))
			continue
		}
		deleted++
	}
	return deleted, deleteErrors
}

func roundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}
