// package camera shells out to libcamera-still to capture a single
// frame. The capture mechanism is external; only its success/failure,
// timing and output size cross back into the system.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/domain"
)

var _ secondary.Camera = (*LibcameraStill)(nil)

// LibcameraStill captures stills with the libcamera-still binary,
// tuned for Pi Zero class hardware (1080p jpg, quality 75).
type LibcameraStill struct {
	binary   string
	outDir   string
	hostname string
	timeout  time.Duration
	logger   primary.Logger
}

// NewLibcameraStill creates a capture collaborator writing
// <hostname>_<timestamp>.jpg files into outDir.
func NewLibcameraStill(binary, outDir, hostname string, timeout time.Duration, logger primary.Logger) *LibcameraStill {
	return &LibcameraStill{
		binary:   binary,
		outDir:   outDir,
		hostname: hostname,
		timeout:  timeout,
		logger:   logger,
	}
}

// Capture executes one still capture stamped with the given timestamp.
func (c *LibcameraStill) Capture(ctx context.Context, timestamp string) (*domain.CaptureResult, error) {
	filename := fmt.Sprintf("%s_%s.jpg", c.hostname, timestamp)
	outPath := filepath.Join(c.outDir, filename)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{
		"-n", // No preview
		"-t", "1",
		"--width", "1920",
		"--height", "1080",
		"-e", "jpg",
		"-q", "75",
		"-o", outPath,
	}

	c.logger.Info("Capturing image", "filename", filename)
	started := time.Now()

	cmd := exec.CommandContext(ctx, c.binary, args...)
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("capture timeout after %s", c.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("capture failed with code %d", exitErr.ExitCode())
		}
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	duration := time.Since(started).Seconds()

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, errors.New("image file not created")
	}

	return &domain.CaptureResult{
		Filename:  filename,
		Duration:  duration,
		SizeBytes: info.Size(),
	}, nil
}
