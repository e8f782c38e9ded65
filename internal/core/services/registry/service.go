package registry

import "gitlab.com/camfleet.net/internal/domain"

// INodeRegistryService defines the controller-side registry of nodes.
// Records are created on first registration, refreshed on every later
// registration or heartbeat, and never evicted; liveness is derived at
// read time from the elapsed time since last contact.
type INodeRegistryService interface {
	// Register upserts a node record with last_seen = now. A repeat
	// registration from the same hostname refreshes address and port,
	// which is the intended behavior for node restarts and IP changes.
	Register(hostname, address string, port int)

	// Heartbeat refreshes last_seen for a known hostname. It reports
	// whether the hostname was present; an unknown heartbeat is
	// accepted but has no registry effect.
	Heartbeat(hostname string) bool

	// Lookup returns the node's last-known address and port.
	Lookup(hostname string) (address string, port int, ok bool)

	// Hostnames returns the currently registered hostnames.
	Hostnames() []string

	// Snapshot returns every record with its derived status, sorted by
	// hostname.
	Snapshot() []domain.NodeInfo
}
