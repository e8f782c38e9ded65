// package agent implements the node-side registration and heartbeat
// emitter. A node registers with the controller under a bounded retry
// policy; exhausting the attempts is fatal for the run and the command
// server is never started. Once registered, heartbeats are emitted at a
// fixed interval for the lifetime of the process.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"gitlab.com/camfleet.net/internal/config"
	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

// ErrRegistrationFailed marks exhaustion of the registration retry
// budget.
var ErrRegistrationFailed = errors.New("registration failed")

// Agent registers a node with the controller and keeps its liveness
// signal alive.
type Agent struct {
	hostname          string
	controllerAddr    string
	commandPort       int
	retry             config.RetryPolicy
	heartbeatInterval time.Duration
	dialTimeout       time.Duration
	ioTimeout         time.Duration
	logger            primary.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithRetryPolicy sets the registration retry policy.
func WithRetryPolicy(policy config.RetryPolicy) AgentOption {
	return func(a *Agent) {
		a.retry = policy
	}
}

// WithHeartbeatInterval sets the interval between liveness signals.
func WithHeartbeatInterval(interval time.Duration) AgentOption {
	return func(a *Agent) {
		a.heartbeatInterval = interval
	}
}

// WithTimeouts sets the connect and send/receive timeouts.
func WithTimeouts(dial, io time.Duration) AgentOption {
	return func(a *Agent) {
		a.dialTimeout = dial
		a.ioTimeout = io
	}
}

// NewAgent creates an emitter for the given node identity. controllerAddr
// is a host:port pair; commandPort is the port this node's command
// server listens on, announced at registration.
func NewAgent(hostname, controllerAddr string, commandPort int, logger primary.Logger, options ...AgentOption) *Agent {
	a := &Agent{
		hostname:          hostname,
		controllerAddr:    controllerAddr,
		commandPort:       commandPort,
		retry:             config.NewRegistrationRetryPolicy(),
		heartbeatInterval: defs.HeartbeatInterval,
		dialTimeout:       defs.DialTimeout,
		ioTimeout:         defs.IOTimeout,
		logger:            logger,
	}

	for _, option := range options {
		option(a)
	}

	return a
}

// Register announces the node to the controller, retrying up to the
// policy's attempt budget with a fixed delay between attempts.
func (a *Agent) Register(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= a.retry.MaxAttempts; attempt++ {
		if err := a.registerOnce(ctx); err != nil {
			lastErr = err
			a.logger.Warn("Registration attempt failed",
				"attempt", attempt, "maxAttempts", a.retry.MaxAttempts, "error", err)

			if attempt < a.retry.MaxAttempts {
				select {
				case <-time.After(a.retry.Delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}

		a.logger.Info("Registered with controller", "hostname", a.hostname, "controller", a.controllerAddr)
		return nil
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRegistrationFailed, a.retry.MaxAttempts, lastErr)
}

func (a *Agent) registerOnce(ctx context.Context) error {
	msg, err := defs.NewMessage(defs.KindRegister, defs.RegisterData{
		Hostname:   a.hostname,
		ClientPort: a.commandPort,
	})
	if err != nil {
		return err
	}

	response, err := a.exchange(ctx, msg)
	if err != nil {
		return err
	}
	if response.Status != defs.StatusSuccess {
		return fmt.Errorf("controller rejected registration: %s", response.Message)
	}
	return nil
}

// RunHeartbeat emits a HEARTBEAT at the configured interval until ctx
// is canceled. A failed heartbeat is logged and the loop simply waits
// for the next tick; it never changes state or re-registers.
func (a *Agent) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(a.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.sendHeartbeat(ctx); err != nil {
				a.logger.Warn("Heartbeat failed", "hostname", a.hostname, "error", err)
				continue
			}
			a.logger.Debug("Heartbeat sent", "hostname", a.hostname)
		}
	}
}

func (a *Agent) sendHeartbeat(ctx context.Context) error {
	msg, err := defs.NewMessage(defs.KindHeartbeat, defs.HeartbeatData{Hostname: a.hostname})
	if err != nil {
		return err
	}

	response, err := a.exchange(ctx, msg)
	if err != nil {
		return err
	}
	if response.Status != defs.StatusSuccess {
		return fmt.Errorf("controller rejected heartbeat: %s", response.Message)
	}
	return nil
}

// exchange performs one connect/send/receive round trip with the
// controller and returns the decoded RESPONSE payload.
func (a *Agent) exchange(ctx context.Context, msg *defs.Message) (*defs.ResponseData, error) {
	dialer := net.Dialer{Timeout: a.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", a.controllerAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to controller: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(a.ioTimeout)); err != nil {
		return nil, err
	}

	if err := framing.WriteMessage(conn, msg); err != nil {
		return nil, err
	}

	reply, err := framing.Decode(conn)
	if err != nil {
		return nil, err
	}
	if reply.Kind != defs.KindResponse {
		return nil, fmt.Errorf("unexpected reply kind %s", reply.Kind)
	}

	var response defs.ResponseData
	if err := reply.DecodeData(&response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ControllerAddress joins a controller host and discovery port.
func ControllerAddress(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
