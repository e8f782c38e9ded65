package primary

import (
	"context"
	"net"

	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// MessageHandler handles one decoded discovery message on the
// controller side. remoteAddr is the peer IP without the port.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn net.Conn, msg *defs.Message, remoteAddr string) error
}

// CommandHandler executes one command on a node. Whatever the handler's
// internal outcome, it is normalized into a ResponseData triple; domain
// failures come back with status ERROR, never as a protocol fault.
type CommandHandler interface {
	HandleCommand(ctx context.Context, msg *defs.Message) defs.ResponseData
}
