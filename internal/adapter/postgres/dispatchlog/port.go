// package dispatchlog contains the PostgreSQL implementation of the
// dispatch audit repository.
package dispatchlog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/domain"
)

var _ secondary.DispatchLogRepository = (*DispatchLogRepository)(nil)

// DispatchLogRepository persists dispatch outcomes with PostgreSQL
type DispatchLogRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewDispatchLogRepository creates a new PostgreSQL dispatch log repository
func NewDispatchLogRepository(db *sqlx.DB, logger primary.Logger) *DispatchLogRepository {
	return &DispatchLogRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the dispatch_log table if it does not exist.
func (r *DispatchLogRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS dispatch_log (
			id UUID PRIMARY KEY,
			hostname TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			latency_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure dispatch_log schema: %w", err)
	}
	return nil
}

// SaveRecord saves one dispatch outcome
func (r *DispatchLogRepository) SaveRecord(ctx context.Context, record *domain.DispatchRecord) error {
	query := `
		INSERT INTO dispatch_log (
			id, hostname, kind, status, message, latency_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Hostname,
		record.Kind,
		record.Status,
		record.Message,
		record.LatencyMs,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save dispatch record", "error", err)
		return fmt.Errorf("failed to save dispatch record: %w", err)
	}

	return nil
}

// RecentRecords returns the most recent dispatch outcomes, newest first
func (r *DispatchLogRepository) RecentRecords(ctx context.Context, limit int) ([]*domain.DispatchRecord, error) {
	query := `
		SELECT id, hostname, kind, status, message, latency_ms, created_at
		FROM dispatch_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	records := make([]*domain.DispatchRecord, 0, limit)
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		r.logger.Error("Failed to query dispatch records", "error", err)
		return nil, fmt.Errorf("failed to query dispatch records: %w", err)
	}

	return records, nil
}
