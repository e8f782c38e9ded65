package handlers

import (
	"context"
	"fmt"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

var _ primary.CommandHandler = (*UploadS3Handler)(nil)

// UploadS3Handler handles UPLOAD_S3 commands. Missing credentials are
// reported as a domain error, never a protocol one.
type UploadS3Handler struct {
	Images   secondary.ImageStore
	Objects  secondary.ObjectStore
	Hostname string
	Logger   primary.Logger
}

// HandleCommand implements the CommandHandler interface
func (h *UploadS3Handler) HandleCommand(ctx context.Context, msg *defs.Message) defs.ResponseData {
	var uploadData defs.UploadS3Data
	if err := msg.DecodeData(&uploadData); err != nil {
		return defs.ResponseData{Status: defs.StatusError, Message: "Invalid upload data"}
	}
	if uploadData.BucketName == "" {
		return defs.ResponseData{Status: defs.StatusError, Message: "No bucket name provided"}
	}

	if err := h.Objects.CheckCredentials(ctx); err != nil {
		h.Logger.Error("Credential check failed", "error", err)
		return defs.ResponseData{Status: defs.StatusError, Message: "No valid AWS credentials found"}
	}

	files, err := h.Images.List()
	if err != nil {
		h.Logger.Error("Failed to list images for upload", "error", err)
		return defs.ResponseData{Status: defs.StatusError, Message: err.Error()}
	}
	if len(files) == 0 {
		return defs.ResponseData{
			Status:  defs.StatusSuccess,
			Message: "No images to upload",
			Data:    map[string]interface{}{"uploaded_count": 0, "errors": []interface{}{}},
		}
	}

	h.Logger.Info("Uploading images", "count", len(files), "bucket", uploadData.BucketName)

	uploaded, uploadErrors, err := h.Objects.UploadImages(ctx, files, uploadData.BucketName, h.Hostname)
	if err != nil {
		h.Logger.Error("Upload failed", "bucket", uploadData.BucketName, "error", err)
		return defs.ResponseData{Status: defs.StatusError, Message: err.Error()}
	}

	return defs.ResponseData{
		Status:  defs.StatusSuccess,
		Message: fmt.Sprintf("Uploaded %d images", uploaded),
		Data: map[string]interface{}{
			"uploaded_count": uploaded,
			"total_count":    len(files),
			"errors":         toInterfaceSlice(uploadErrors),
		},
	}
}

func toInterfaceSlice(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
