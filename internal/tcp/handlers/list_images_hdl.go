package handlers

import (
	"context"
	"fmt"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

var _ primary.CommandHandler = (*ListImagesHandler)(nil)

// ListImagesHandler handles LIST_IMAGES commands
type ListImagesHandler struct {
	Images secondary.ImageStore
	Logger primary.Logger
}

// HandleCommand implements the CommandHandler interface
func (h *ListImagesHandler) HandleCommand(ctx context.Context, msg *defs.Message) defs.ResponseData {
	inventory, err := h.Images.Info()
	if err != nil {
		h.Logger.Error("Failed to list images", "error", err)
		return defs.ResponseData{Status: defs.StatusError, Message: err.Error()}
	}

	files := make([]interface{}, 0, len(inventory.Files))
	for _, file := range inventory.Files {
		files = append(files, map[string]interface{}{
			"name":    file.Name,
			"size":    file.Size,
			"size_mb": file.SizeMB,
		})
	}

	return defs.ResponseData{
		Status:  defs.StatusSuccess,
		Message: fmt.Sprintf("Found %d images", inventory.Count),
		Data: map[string]interface{}{
			"count":            inventory.Count,
			"total_size_bytes": inventory.TotalSizeBytes,
			"total_size_mb":    inventory.TotalSizeMB,
			"files":            files,
		},
	}
}
