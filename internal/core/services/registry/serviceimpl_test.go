package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/camfleet.net/internal/adapter/logging"
	"gitlab.com/camfleet.net/internal/domain"
)

func newTestRegistry() *NodeRegistryService {
	return NewNodeRegistryService(logging.NewNopLogger())
}

func TestRegisterUpsertLastWriteWins(t *testing.T) {
	reg := newTestRegistry()

	reg.Register("cam-01", "10.0.0.5", 8889)
	reg.Register("cam-01", "10.0.0.9", 9100)

	address, port, ok := reg.Lookup("cam-01")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.9", address)
	assert.Equal(t, 9100, port)

	// Still exactly one record.
	assert.Len(t, reg.Hostnames(), 1)
}

func TestHeartbeat(t *testing.T) {
	t.Run("known hostname refreshes last_seen", func(t *testing.T) {
		reg := newTestRegistry()
		base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		now := base
		reg.now = func() time.Time { return now }

		reg.Register("cam-01", "10.0.0.5", 8889)

		now = base.Add(45 * time.Second)
		require.True(t, reg.Heartbeat("cam-01"))

		snapshot := reg.Snapshot()
		require.Len(t, snapshot, 1)
		assert.Equal(t, base.Add(45*time.Second), snapshot[0].LastSeen)
		assert.Equal(t, domain.NodeConnected, snapshot[0].Status)
	})

	t.Run("unknown hostname has no registry effect", func(t *testing.T) {
		reg := newTestRegistry()
		assert.False(t, reg.Heartbeat("ghost"))
		assert.Empty(t, reg.Snapshot())
	})
}

func TestDeriveNodeStatusBoundaries(t *testing.T) {
	lastSeen := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    domain.NodeStatus
	}{
		{"just seen", 0, domain.NodeConnected},
		{"at 30s", 30 * time.Second, domain.NodeConnected},
		{"just over 30s", 31 * time.Second, domain.NodeTimeout},
		{"at 60s", 60 * time.Second, domain.NodeTimeout},
		{"just over 60s", 61 * time.Second, domain.NodeDisconnected},
		{"minutes later", 10 * time.Minute, domain.NodeDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DeriveNodeStatus(lastSeen, lastSeen.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

// A node that keeps heartbeating every 10s never leaves connected, and
// last_seen advances with each beat.
func TestHeartbeatKeepsNodeConnected(t *testing.T) {
	reg := newTestRegistry()
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	now := base
	reg.now = func() time.Time { return now }

	reg.Register("cam-01", "10.0.0.5", 8889)

	for i := 1; i <= 3; i++ {
		now = base.Add(time.Duration(i) * 10 * time.Second)
		require.True(t, reg.Heartbeat("cam-01"))

		snapshot := reg.Snapshot()
		require.Len(t, snapshot, 1)
		assert.Equal(t, domain.NodeConnected, snapshot[0].Status)
		assert.Equal(t, now, snapshot[0].LastSeen)
		assert.Equal(t, float64(0), snapshot[0].SecondsSinceSeen)
	}
}

func TestSnapshotSortedByHostname(t *testing.T) {
	reg := newTestRegistry()
	reg.Register("cam-03", "10.0.0.3", 8889)
	reg.Register("cam-01", "10.0.0.1", 8889)
	reg.Register("cam-02", "10.0.0.2", 8889)

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "cam-01", snapshot[0].Hostname)
	assert.Equal(t, "cam-02", snapshot[1].Hostname)
	assert.Equal(t, "cam-03", snapshot[2].Hostname)
}

func TestLookupUnknownHostname(t *testing.T) {
	reg := newTestRegistry()
	_, _, ok := reg.Lookup("ghost")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	reg := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hostname := fmt.Sprintf("cam-%02d", n%4)
			for j := 0; j < 100; j++ {
				reg.Register(hostname, "10.0.0.1", 8889+n)
				reg.Heartbeat(hostname)
				reg.Lookup(hostname)
				reg.Snapshot()
				reg.Hostnames()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, reg.Hostnames(), 4)
}
