// package tcp contains the controller's discovery server and the
// node's command server, both speaking one length-prefixed frame per
// logical exchange.
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
	"gitlab.com/camfleet.net/internal/tcp/handlers"
)

// DiscoveryServer accepts node registrations and heartbeats on the
// controller. Each inbound connection carries exactly one message and
// one acknowledgment.
type DiscoveryServer struct {
	address   string
	registry  registry.INodeRegistryService
	logger    primary.Logger
	listener  net.Listener
	stopCh    chan struct{}
	ioTimeout time.Duration
	handlers  map[defs.Kind]primary.MessageHandler
}

// DiscoveryServerOption configures a DiscoveryServer
type DiscoveryServerOption func(*DiscoveryServer)

// WithAddress sets the listen address
func WithAddress(address string) DiscoveryServerOption {
	return func(s *DiscoveryServer) {
		s.address = address
	}
}

// WithIOTimeout sets the per-connection read/write deadline
func WithIOTimeout(timeout time.Duration) DiscoveryServerOption {
	return func(s *DiscoveryServer) {
		s.ioTimeout = timeout
	}
}

// NewDiscoveryServer creates a discovery server over the given registry
func NewDiscoveryServer(reg registry.INodeRegistryService, logger primary.Logger, options ...DiscoveryServerOption) *DiscoveryServer {
	server := &DiscoveryServer{
		address:   fmt.Sprintf(":%d", defs.DefaultDiscoveryPort),
		registry:  reg,
		logger:    logger,
		stopCh:    make(chan struct{}),
		ioTimeout: defs.IOTimeout,
	}

	for _, option := range options {
		option(server)
	}

	server.setupMessageHandlers()

	return server
}

// setupMessageHandlers registers all message handlers
func (s *DiscoveryServer) setupMessageHandlers() {
	s.handlers = map[defs.Kind]primary.MessageHandler{
		defs.KindRegister:  &handlers.NodeRegistrationHandler{Registry: s.registry, Logger: s.logger},
		defs.KindHeartbeat: &handlers.NodeHeartbeatHandler{Registry: s.registry, Logger: s.logger},
	}
}

// Start begins accepting connections.
func (s *DiscoveryServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start discovery server: %w", err)
	}

	s.logger.Info("Discovery server listening", "address", s.listener.Addr().String())

	go s.acceptConnections()

	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *DiscoveryServer) Addr() string {
	if s.listener == nil {
		return s.address
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and stops accepting connections.
func (s *DiscoveryServer) Stop(ctx context.Context) error {
	close(s.stopCh)

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Error("Failed to close listener", "error", err)
		}
	}

	return nil
}

// acceptConnections accepts incoming connections
func (s *DiscoveryServer) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Failed to accept connection", "error", err)
				time.Sleep(defs.ConnectionRetryDelay) // Avoid tight loop on error
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

// handleConnection decodes exactly one message, routes it, and closes.
func (s *DiscoveryServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		s.logger.Error("Failed to set connection deadline", "error", err)
		return
	}

	msg, err := framing.Decode(conn)
	if err != nil {
		s.logger.Warn("Failed to decode discovery message", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	remoteAddr, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		remoteAddr = conn.RemoteAddr().String()
	}

	handler, exists := s.handlers[msg.Kind]
	if !exists {
		s.logger.Warn("Unexpected message kind on discovery port", "kind", msg.Kind, "remote", remoteAddr)
		if errMsg, err := defs.NewErrorMessage(fmt.Sprintf("Unexpected message kind: %s", msg.Kind)); err == nil {
			_ = framing.WriteMessage(conn, errMsg)
		}
		return
	}

	ctx := context.Background()
	if err := handler.HandleMessage(ctx, conn, msg, remoteAddr); err != nil {
		s.logger.Error("Error handling discovery message", "kind", msg.Kind, "remote", remoteAddr, "error", err)
	}
}
