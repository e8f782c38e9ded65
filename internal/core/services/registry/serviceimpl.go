package registry

import (
	"sort"
	"sync"
	"time"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/domain"
)

var _ INodeRegistryService = (*NodeRegistryService)(nil)

type nodeRecord struct {
	address  string
	port     int
	lastSeen time.Time
}

// NodeRegistryService is the in-memory registry implementation. All
// access goes through one mutex; operations touch only the map and
// never block on I/O, so lock hold time is bounded and independent of
// network latency. State lives for the controller's lifetime only.
type NodeRegistryService struct {
	mu     sync.Mutex
	nodes  map[string]*nodeRecord
	now    func() time.Time
	logger primary.Logger
}

// NewNodeRegistryService creates an empty registry.
func NewNodeRegistryService(logger primary.Logger) *NodeRegistryService {
	return &NodeRegistryService{
		nodes:  make(map[string]*nodeRecord),
		now:    time.Now,
		logger: logger,
	}
}

// Register upserts a node record. Always succeeds; last write wins.
func (s *NodeRegistryService) Register(hostname, address string, port int) {
	s.mu.Lock()
	s.nodes[hostname] = &nodeRecord{
		address:  address,
		port:     port,
		lastSeen: s.now(),
	}
	s.mu.Unlock()

	s.logger.Info("Node registered", "hostname", hostname, "address", address, "port", port)
}

// Heartbeat refreshes last_seen for a known hostname.
func (s *NodeRegistryService) Heartbeat(hostname string) bool {
	s.mu.Lock()
	record, exists := s.nodes[hostname]
	if exists {
		record.lastSeen = s.now()
	}
	s.mu.Unlock()

	if !exists {
		s.logger.Warn("Heartbeat from unregistered node", "hostname", hostname)
	}
	return exists
}

// Lookup returns the last-known location of a node.
func (s *NodeRegistryService) Lookup(hostname string) (string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.nodes[hostname]
	if !exists {
		return "", 0, false
	}
	return record.address, record.port, true
}

// Hostnames returns the registered hostnames in no particular order.
func (s *NodeRegistryService) Hostnames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hostnames := make([]string, 0, len(s.nodes))
	for hostname := range s.nodes {
		hostnames = append(hostnames, hostname)
	}
	return hostnames
}

// Snapshot returns every record with its derived status. The lock is
// held for the duration of the read only.
func (s *NodeRegistryService) Snapshot() []domain.NodeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	infos := make([]domain.NodeInfo, 0, len(s.nodes))
	for hostname, record := range s.nodes {
		infos = append(infos, domain.NodeInfo{
			Hostname:         hostname,
			Address:          record.address,
			Port:             record.port,
			LastSeen:         record.lastSeen,
			Status:           domain.DeriveNodeStatus(record.lastSeen, now),
			SecondsSinceSeen: now.Sub(record.lastSeen).Seconds(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Hostname < infos[j].Hostname
	})
	return infos
}
