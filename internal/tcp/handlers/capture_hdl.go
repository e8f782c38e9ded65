package handlers

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// CaptureTimestampLayout is the shared timestamp format stamped into
// capture filenames across the fleet.
const CaptureTimestampLayout = "20060102_150405"

var _ primary.CommandHandler = (*CaptureHandler)(nil)

// CaptureHandler handles CAPTURE commands by invoking the camera
// collaborator. Capture failures are domain errors: they come back as a
// RESPONSE with status ERROR, not a protocol fault.
type CaptureHandler struct {
	Camera secondary.Camera
	Logger primary.Logger
}

// HandleCommand implements the CommandHandler interface
func (h *CaptureHandler) HandleCommand(ctx context.Context, msg *defs.Message) defs.ResponseData {
	var captureData defs.CaptureData
	if err := msg.DecodeData(&captureData); err != nil {
		return defs.ResponseData{Status: defs.StatusError, Message: "Invalid capture data"}
	}
	if captureData.Timestamp == "" {
		captureData.Timestamp = time.Now().Format(CaptureTimestampLayout)
	}

	result, err := h.Camera.Capture(ctx, captureData.Timestamp)
	if err != nil {
		h.Logger.Error("Capture failed", "error", err)
		return defs.ResponseData{Status: defs.StatusError, Message: err.Error()}
	}

	h.Logger.Info("Capture completed", "filename", result.Filename, "duration", result.Duration, "sizeBytes", result.SizeBytes)

	return defs.ResponseData{
		Status:  defs.StatusSuccess,
		Message: fmt.Sprintf("Captured %s", result.Filename),
		Data: map[string]interface{}{
			"filename":   result.Filename,
			"duration":   result.Duration,
			"size_bytes": result.SizeBytes,
		},
	}
}
