package dispatch

import (
	"context"

	"gitlab.com/camfleet.net/internal/domain"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// ICommandDispatchService sends commands to nodes over short-lived
// connections and aggregates per-node results.
type ICommandDispatchService interface {
	// Unicast sends one message to one node and awaits exactly one
	// reply. Every connection error, timeout, or decode failure is
	// converted into a result with status ERROR; Unicast never
	// propagates a fault past its own boundary.
	Unicast(ctx context.Context, hostname string, msg *defs.Message) domain.DispatchResult

	// Broadcast fans Unicast out concurrently to every registered node
	// and returns one result per hostname. One node's failure must not
	// delay, cancel, or corrupt any other node's call. The call returns
	// only after every fan-out call resolves.
	Broadcast(ctx context.Context, msg *defs.Message) map[string]domain.DispatchResult
}
