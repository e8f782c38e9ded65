package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
	"gitlab.com/camfleet.net/internal/tcp/handlers"
)

// CommandServer is the node-side listener. Per inbound connection it
// decodes exactly one message, routes the kind to one handler, sends
// one RESPONSE, and closes; connections are never reused.
type CommandServer struct {
	address   string
	hostname  string
	logger    primary.Logger
	listener  net.Listener
	stopCh    chan struct{}
	ioTimeout time.Duration
	handlers  map[defs.Kind]primary.CommandHandler
}

// CommandServerOption configures a CommandServer
type CommandServerOption func(*CommandServer)

// WithListenAddress sets the listen address
func WithListenAddress(address string) CommandServerOption {
	return func(s *CommandServer) {
		s.address = address
	}
}

// WithCommandIOTimeout sets the per-connection read/write deadline
func WithCommandIOTimeout(timeout time.Duration) CommandServerOption {
	return func(s *CommandServer) {
		s.ioTimeout = timeout
	}
}

// NewCommandServer creates a command server wired to the node's
// collaborators.
func NewCommandServer(
	hostname string,
	camera secondary.Camera,
	images secondary.ImageStore,
	objects secondary.ObjectStore,
	logger primary.Logger,
	options ...CommandServerOption,
) *CommandServer {
	server := &CommandServer{
		address:   fmt.Sprintf(":%d", defs.DefaultCommandPort),
		hostname:  hostname,
		logger:    logger,
		stopCh:    make(chan struct{}),
		ioTimeout: defs.IOTimeout,
	}

	for _, option := range options {
		option(server)
	}

	server.handlers = map[defs.Kind]primary.CommandHandler{
		defs.KindCapture:      &handlers.CaptureHandler{Camera: camera, Logger: logger},
		defs.KindListImages:   &handlers.ListImagesHandler{Images: images, Logger: logger},
		defs.KindUploadS3:     &handlers.UploadS3Handler{Images: images, Objects: objects, Hostname: hostname, Logger: logger},
		defs.KindDeleteImages: &handlers.DeleteImagesHandler{Images: images, Logger: logger},
	}

	return server
}

// Start begins accepting command connections.
func (s *CommandServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start command server: %w", err)
	}

	s.logger.Info("Command server listening", "hostname", s.hostname, "address", s.listener.Addr().String())

	go s.acceptConnections()

	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *CommandServer) Addr() string {
	if s.listener == nil {
		return s.address
	}
	return s.listener.Addr().String()
}

// Stop closes the listener.
func (s *CommandServer) Stop(ctx context.Context) error {
	close(s.stopCh)

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Error("Failed to close listener", "error", err)
		}
	}

	return nil
}

func (s *CommandServer) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Failed to accept connection", "error", err)
				time.Sleep(defs.ConnectionRetryDelay)
				continue
			}
		}

		// A slow handler must not block acceptance of the next command.
		go s.handleConnection(conn)
	}
}

// handleConnection walks one connection through
// decode → dispatch → respond → close.
func (s *CommandServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		s.logger.Error("Failed to set connection deadline", "error", err)
		return
	}

	msg, err := framing.Decode(conn)
	if err != nil {
		// Framing failure: no reply, just close.
		s.logger.Warn("Failed to decode command", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	s.logger.Info("Command received", "kind", msg.Kind, "remote", conn.RemoteAddr().String())

	var response defs.ResponseData
	if handler, exists := s.handlers[msg.Kind]; exists {
		response = handler.HandleCommand(context.Background(), msg)
	} else {
		// Known kind, but not a command this server executes.
		response = defs.ResponseData{Status: defs.StatusError, Message: "Unknown command"}
	}

	reply, err := defs.NewResponseMessage(response.Status, response.Message, response.Data)
	if err != nil {
		s.logger.Error("Failed to build response", "kind", msg.Kind, "error", err)
		return
	}
	if err := framing.WriteMessage(conn, reply); err != nil {
		s.logger.Error("Failed to send response", "kind", msg.Kind, "error", err)
	}
}
