package secondary

import "gitlab.com/camfleet.net/internal/domain"

// ImageStore enumerates and deletes image files on a node's local
// filesystem.
type ImageStore interface {
	// List returns the image filenames in the store.
	List() ([]string, error)

	// Info returns counts, sizes and per-file details.
	Info() (*domain.ImageInventory, error)

	// DeleteAll removes every image, returning the deleted count and
	// per-item error strings.
	DeleteAll() (int, []string)
}
