package handlers

import (
	"context"
	"net"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	"gitlab.com/camfleet.net/internal/tcp/framing"
)

var _ primary.MessageHandler = (*NodeHeartbeatHandler)(nil)

// NodeHeartbeatHandler handles HEARTBEAT messages from nodes
type NodeHeartbeatHandler struct {
	Registry registry.INodeRegistryService
	Logger   primary.Logger
}

// HandleMessage implements the MessageHandler interface. A heartbeat
// from an unregistered hostname is acked but has no registry effect;
// the node is not told to re-register.
func (h *NodeHeartbeatHandler) HandleMessage(ctx context.Context, conn net.Conn, msg *defs.Message, remoteAddr string) error {
	var heartbeatData defs.HeartbeatData
	if err := msg.DecodeData(&heartbeatData); err != nil {
		h.Logger.Error("Failed to parse node heartbeat", "error", err)
		sendErrorMessage(conn, "Invalid heartbeat data")
		return err
	}

	known := h.Registry.Heartbeat(heartbeatData.Hostname)
	h.Logger.Debug("Heartbeat received", "hostname", heartbeatData.Hostname, "known", known)

	ack, err := defs.NewResponseMessage(defs.StatusSuccess, "Heartbeat received", nil)
	if err != nil {
		return err
	}
	if err := framing.WriteMessage(conn, ack); err != nil {
		h.Logger.Error("Failed to send heartbeat ack", "hostname", heartbeatData.Hostname, "error", err)
		return err
	}

	return nil
}
