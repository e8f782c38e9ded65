package handlers

import (
	"context"
	"fmt"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

var _ primary.CommandHandler = (*DeleteImagesHandler)(nil)

// DeleteImagesHandler handles DELETE_IMAGES commands
type DeleteImagesHandler struct {
	Images secondary.ImageStore
	Logger primary.Logger
}

// HandleCommand implements the CommandHandler interface
func (h *DeleteImagesHandler) HandleCommand(ctx context.Context, msg *defs.Message) defs.ResponseData {
	deleted, deleteErrors := h.Images.DeleteAll()

	h.Logger.Info("Deleted images", "count", deleted, "errors", len(deleteErrors))

	return defs.ResponseData{
		Status:  defs.StatusSuccess,
		Message: fmt.Sprintf("Deleted %d images", deleted),
		Data: map[string]interface{}{
			"deleted_count": deleted,
			"errors":        toInterfaceSlice(deleteErrors),
		},
	}
}
