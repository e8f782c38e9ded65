package dispatch

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/domain"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

// DefaultMaxConcurrent bounds the broadcast fan-out worker pool.
const DefaultMaxConcurrent = 16

var _ ICommandDispatchService = (*CommandDispatchService)(nil)

// CommandDispatchService implements command dispatch over short-lived
// TCP connections. Address lookup and the network call are two separate
// lock scopes: a registry update in between is an accepted race and
// surfaces as a failed call.
type CommandDispatchService struct {
	registry      registry.INodeRegistryService
	auditLog      secondary.DispatchLogRepository
	logger        primary.Logger
	dialTimeout   time.Duration
	ioTimeout     time.Duration
	maxConcurrent int
}

// DispatchOption configures a CommandDispatchService.
type DispatchOption func(*CommandDispatchService)

// WithTimeouts sets the connect and send/receive timeouts.
func WithTimeouts(dial, io time.Duration) DispatchOption {
	return func(s *CommandDispatchService) {
		s.dialTimeout = dial
		s.ioTimeout = io
	}
}

// WithMaxConcurrent bounds the number of simultaneous outbound calls
// during a broadcast.
func WithMaxConcurrent(n int) DispatchOption {
	return func(s *CommandDispatchService) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithAuditLog records every dispatch outcome in the given repository.
func WithAuditLog(repo secondary.DispatchLogRepository) DispatchOption {
	return func(s *CommandDispatchService) {
		s.auditLog = repo
	}
}

// NewCommandDispatchService creates a dispatcher over the given registry.
func NewCommandDispatchService(reg registry.INodeRegistryService, logger primary.Logger, options ...DispatchOption) *CommandDispatchService {
	service := &CommandDispatchService{
		registry:      reg,
		logger:        logger,
		dialTimeout:   defs.DialTimeout,
		ioTimeout:     defs.IOTimeout,
		maxConcurrent: DefaultMaxConcurrent,
	}

	for _, option := range options {
		option(service)
	}

	return service
}

// Unicast sends one message to one node and awaits exactly one reply.
func (s *CommandDispatchService) Unicast(ctx context.Context, hostname string, msg *defs.Message) domain.DispatchResult {
	started := time.Now()
	result := s.call(ctx, hostname, msg)
	s.audit(ctx, hostname, msg.Kind, result, time.Since(started))
	return result
}

func (s *CommandDispatchService) call(ctx context.Context, hostname string, msg *defs.Message) domain.DispatchResult {
	address, port, ok := s.registry.Lookup(hostname)
	if !ok {
		return errorResult(fmt.Sprintf("Node %s not found", hostname))
	}

	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		s.logger.Warn("Failed to connect to node", "hostname", hostname, "error", err)
		return errorResult(fmt.Sprintf("Failed to connect: %v", err))
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		return errorResult(fmt.Sprintf("Failed to set deadline: %v", err))
	}

	if err := framing.WriteMessage(conn, msg); err != nil {
		s.logger.Warn("Failed to send command", "hostname", hostname, "error", err)
		return errorResult(fmt.Sprintf("Failed to send command: %v", err))
	}

	reply, err := framing.Decode(conn)
	if err != nil {
		s.logger.Warn("Failed to read reply", "hostname", hostname, "error", err)
		return errorResult(fmt.Sprintf("No response received: %v", err))
	}

	switch reply.Kind {
	case defs.KindResponse:
		var response defs.ResponseData
		if err := reply.DecodeData(&response); err != nil {
			return errorResult(fmt.Sprintf("Malformed response: %v", err))
		}
		return domain.DispatchResult{
			Status:  response.Status,
			Message: response.Message,
			Data:    response.Data,
		}
	case defs.KindError:
		var errData defs.ErrorData
		if err := reply.DecodeData(&errData); err != nil {
			return errorResult(fmt.Sprintf("Malformed error reply: %v", err))
		}
		return errorResult(errData.Error)
	default:
		return errorResult(fmt.Sprintf("Unexpected reply kind %s", reply.Kind))
	}
}

// Broadcast snapshots the registered hostnames, then issues one Unicast
// per hostname concurrently through a bounded worker pool. Results are
// keyed by hostname; completion order carries no meaning.
func (s *CommandDispatchService) Broadcast(ctx context.Context, msg *defs.Message) map[string]domain.DispatchResult {
	hostnames := s.registry.Hostnames()
	results := make(map[string]domain.DispatchResult, len(hostnames))
	if len(hostnames) == 0 {
		return results
	}

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrent)

	for _, hostname := range hostnames {
		hostname := hostname
		group.Go(func() error {
			result := s.Unicast(ctx, hostname, msg)
			mu.Lock()
			results[hostname] = result
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is a join point.
	_ = group.Wait()
	return results
}

func (s *CommandDispatchService) audit(ctx context.Context, hostname string, kind defs.Kind, result domain.DispatchResult, latency time.Duration) {
	if s.auditLog == nil {
		return
	}

	record := &domain.DispatchRecord{
		ID:        uuid.New(),
		Hostname:  hostname,
		Kind:      string(kind),
		Status:    result.Status,
		Message:   result.Message,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if err := s.auditLog.SaveRecord(ctx, record); err != nil {
		s.logger.Error("Failed to save dispatch record", "hostname", hostname, "error", err)
	}
}

func errorResult(message string) domain.DispatchResult {
	return domain.DispatchResult{Status: defs.StatusError, Message: message}
}
