package domain

import (
	"time"

	"github.com/google/uuid"
)

// DispatchResult is the per-node outcome of a command dispatch. Both
// domain failures reported by the node and connectivity failures
// synthesized by the dispatcher take this shape; a dispatch never
// surfaces a raw transport error to its caller.
type DispatchResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// DispatchRecord is one audit row describing a dispatched command and
// its outcome.
type DispatchRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Hostname  string    `db:"hostname" json:"hostname"`
	Kind      string    `db:"kind" json:"kind"`
	Status    string    `db:"status" json:"status"`
	Message   string    `db:"message" json:"message"`
	LatencyMs int64     `db:"latency_ms" json:"latency_ms"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
