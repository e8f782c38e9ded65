package dispatch

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/camfleet.net/internal/adapter/logging"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

// fakeNode is a loopback command endpoint answering every connection
// with one canned RESPONSE frame.
func fakeNode(t *testing.T, response defs.ResponseData) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				if _, err := framing.Decode(conn); err != nil {
					return
				}
				reply, err := defs.NewResponseMessage(response.Status, response.Message, response.Data)
				if err != nil {
					return
				}
				_ = framing.WriteMessage(conn, reply)
			}(conn)
		}
	}()

	return hostPort(t, listener.Addr().String())
}

// brokenNode accepts and immediately closes, so the dispatcher sees a
// truncated reply.
func brokenNode(t *testing.T) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	return hostPort(t, listener.Addr().String())
}

// deadAddress returns a loopback port with nothing listening on it.
func deadAddress(t *testing.T) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port := hostPort(t, listener.Addr().String())
	require.NoError(t, listener.Close())
	return host, port
}

func hostPort(t *testing.T, address string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(address)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func newTestDispatcher(reg registry.INodeRegistryService) *CommandDispatchService {
	return NewCommandDispatchService(reg, logging.NewNopLogger(),
		WithTimeouts(2*time.Second, 2*time.Second))
}

func captureMessage(t *testing.T) *defs.Message {
	t.Helper()
	msg, err := defs.NewMessage(defs.KindCapture, defs.CaptureData{Timestamp: "20260831_120000"})
	require.NoError(t, err)
	return msg
}

func TestUnicast(t *testing.T) {
	t.Run("successful round trip returns the node's payload", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())
		host, port := fakeNode(t, defs.ResponseData{
			Status:  defs.StatusSuccess,
			Message: "Captured cam-01_20260831_120000.jpg",
			Data:    map[string]interface{}{"filename": "cam-01_20260831_120000.jpg"},
		})
		reg.Register("cam-01", host, port)

		result := newTestDispatcher(reg).Unicast(context.Background(), "cam-01", captureMessage(t))

		assert.Equal(t, defs.StatusSuccess, result.Status)
		assert.Equal(t, "Captured cam-01_20260831_120000.jpg", result.Message)
		assert.Equal(t, "cam-01_20260831_120000.jpg", result.Data["filename"])
	})

	t.Run("unknown hostname yields an error result", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())

		result := newTestDispatcher(reg).Unicast(context.Background(), "ghost", captureMessage(t))

		assert.Equal(t, defs.StatusError, result.Status)
		assert.Contains(t, result.Message, "not found")
	})

	t.Run("unreachable node yields an error result", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())
		host, port := deadAddress(t)
		reg.Register("cam-01", host, port)

		result := newTestDispatcher(reg).Unicast(context.Background(), "cam-01", captureMessage(t))

		assert.Equal(t, defs.StatusError, result.Status)
		assert.Contains(t, result.Message, "Failed to connect")
	})

	t.Run("truncated reply yields an error result", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())
		host, port := brokenNode(t)
		reg.Register("cam-01", host, port)

		result := newTestDispatcher(reg).Unicast(context.Background(), "cam-01", captureMessage(t))

		assert.Equal(t, defs.StatusError, result.Status)
		assert.Contains(t, result.Message, "No response received")
	})
}

func TestBroadcast(t *testing.T) {
	t.Run("empty registry returns an empty mapping", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())

		results := newTestDispatcher(reg).Broadcast(context.Background(), captureMessage(t))

		assert.Empty(t, results)
	})

	t.Run("one unreachable node does not affect the others", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())

		for _, hostname := range []string{"cam-01", "cam-02", "cam-03"} {
			host, port := fakeNode(t, defs.ResponseData{Status: defs.StatusSuccess, Message: "ok"})
			reg.Register(hostname, host, port)
		}
		host, port := deadAddress(t)
		reg.Register("cam-04", host, port)

		results := newTestDispatcher(reg).Broadcast(context.Background(), captureMessage(t))

		require.Len(t, results, 4)
		for _, hostname := range []string{"cam-01", "cam-02", "cam-03"} {
			assert.Equal(t, defs.StatusSuccess, results[hostname].Status, hostname)
			assert.Equal(t, "ok", results[hostname].Message, hostname)
		}
		assert.Equal(t, defs.StatusError, results["cam-04"].Status)
	})

	t.Run("fan-out respects a tiny worker pool", func(t *testing.T) {
		reg := registry.NewNodeRegistryService(logging.NewNopLogger())
		for _, hostname := range []string{"cam-01", "cam-02", "cam-03", "cam-04", "cam-05"} {
			host, port := fakeNode(t, defs.ResponseData{Status: defs.StatusSuccess, Message: "ok"})
			reg.Register(hostname, host, port)
		}

		dispatcher := NewCommandDispatchService(reg, logging.NewNopLogger(),
			WithTimeouts(2*time.Second, 2*time.Second),
			WithMaxConcurrent(2))

		results := dispatcher.Broadcast(context.Background(), captureMessage(t))

		require.Len(t, results, 5)
		for hostname, result := range results {
			assert.Equal(t, defs.StatusSuccess, result.Status, hostname)
		}
	})
}
