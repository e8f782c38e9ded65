// package framing implements the length-delimited wire format shared by
// the controller and the nodes: a 4-byte big-endian length prefix
// followed by that many bytes of a JSON message body.
package framing

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// ErrFraming marks any failure to produce or consume a well-formed
// frame: truncated prefix, oversized body, malformed JSON, or a kind
// outside the closed enum. The codec never retries; on a decode failure
// the caller owns closing the connection.
var ErrFraming = errors.New("framing error")

// Encode serializes a message into a single frame.
func Encode(m *defs.Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal body: %v", ErrFraming, err)
	}
	if len(body) > defs.MaxFrameSize {
		return nil, fmt.Errorf("%w: body length %d exceeds maximum %d", ErrFraming, len(body), defs.MaxFrameSize)
	}

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

// Decode reads exactly one frame from r and parses it into a message.
// It blocks until the declared byte count is available or the peer
// closes the stream.
func Decode(r io.Reader) (*defs.Message, error) {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("%w: read length prefix: %v", ErrFraming, err)
	}

	length := binary.BigEndian.Uint32(prefix)
	if length > defs.MaxFrameSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds maximum %d", ErrFraming, length, defs.MaxFrameSize)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFraming, err)
	}

	var m defs.Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: unmarshal body: %v", ErrFraming, err)
	}
	if !m.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown message kind %q", ErrFraming, m.Kind)
	}
	return &m, nil
}

// WriteMessage encodes m and writes the frame to w.
func WriteMessage(w io.Writer, m *defs.Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
