package handlers

import (
	"context"
	"fmt"
	"net"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

// Implementation of discovery message handlers
// Each handler deals with one specific message kind

var _ primary.MessageHandler = (*NodeRegistrationHandler)(nil)

// NodeRegistrationHandler handles REGISTER messages from nodes
type NodeRegistrationHandler struct {
	Registry registry.INodeRegistryService
	Logger   primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *NodeRegistrationHandler) HandleMessage(ctx context.Context, conn net.Conn, msg *defs.Message, remoteAddr string) error {
	var registerData defs.RegisterData
	if err := msg.DecodeData(&registerData); err != nil {
		h.Logger.Error("Failed to parse node registration", "error", err)
		sendErrorMessage(conn, "Invalid registration data")
		return err
	}

	if registerData.Hostname == "" {
		registerData.Hostname = fmt.Sprintf("unknown_%s", remoteAddr)
	}
	if registerData.ClientPort == 0 {
		registerData.ClientPort = defs.DefaultCommandPort
	}

	// The node's address comes from the connection, not the payload.
	h.Registry.Register(registerData.Hostname, remoteAddr, registerData.ClientPort)

	ack, err := defs.NewResponseMessage(defs.StatusSuccess, "Registered successfully", nil)
	if err != nil {
		return err
	}
	if err := framing.WriteMessage(conn, ack); err != nil {
		h.Logger.Error("Failed to send registration ack", "hostname", registerData.Hostname, "error", err)
		return err
	}

	return nil
}

// sendErrorMessage sends an ERROR message, ignoring write failures as
// the connection might be closing.
func sendErrorMessage(conn net.Conn, reason string) {
	msg, err := defs.NewErrorMessage(reason)
	if err != nil {
		return
	}
	_ = framing.WriteMessage(conn, msg)
}
