package secondary

import (
	"context"

	"gitlab.com/camfleet.net/internal/domain"
)

// DispatchLogRepository persists per-node dispatch outcomes for
// operator history. Registry state itself is never persisted.
type DispatchLogRepository interface {
	SaveRecord(ctx context.Context, record *domain.DispatchRecord) error
	RecentRecords(ctx context.Context, limit int) ([]*domain.DispatchRecord, error)
}
