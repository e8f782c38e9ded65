package secondary

import (
	"context"

	"gitlab.com/camfleet.net/internal/domain"
)

// Camera is the image-capture collaborator. The capture mechanism is
// external to the core; it is reduced to a success/failure outcome with
// timing and size.
type Camera interface {
	Capture(ctx context.Context, timestamp string) (*domain.CaptureResult, error)
}
