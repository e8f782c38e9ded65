package nodes

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/camfleet.net/internal/domain"
	"gitlab.com/camfleet.net/internal/tcp/defs"
)

type fakeRegistry struct {
	snapshot []domain.NodeInfo
}

func (f *fakeRegistry) Register(hostname, address string, port int)        {}
func (f *fakeRegistry) Heartbeat(hostname string) bool                     { return false }
func (f *fakeRegistry) Lookup(hostname string) (address string, port int, ok bool) { return "", 0, false }
func (f *fakeRegistry) Hostnames() []string                                { return nil }
func (f *fakeRegistry) Snapshot() []domain.NodeInfo                        { return f.snapshot }

func TestGetNodes(t *testing.T) {
	registry := &fakeRegistry{snapshot: []domain.NodeInfo{
		{
			Hostname: "cam-01",
			Address:  "192.168.1.10",
			Port:     defs.DefaultCommandPort,
			LastSeen: time.Now(),
			Status:   domain.NodeConnected,
		},
		{
			Hostname: "cam-02",
			Address:  "192.168.1.11",
			Port:     defs.DefaultCommandPort,
			LastSeen: time.Now().Add(-2 * time.Minute),
			Status:   domain.NodeDisconnected,
		},
	}}

	router := mux.NewRouter()
	NewHandler(registry).Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/nodes", nil))

	require.Equal(t, 200, rec.Code)

	var nodes []domain.NodeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, "cam-01", nodes[0].Hostname)
	assert.Equal(t, domain.NodeDisconnected, nodes[1].Status)
}
