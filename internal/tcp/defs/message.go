package defs

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope exchanged between controller and nodes. Data
// holds the raw per-kind payload; use DecodeData to read it into one of
// the typed payload structs below.
type Message struct {
	Kind      Kind            `json:"kind"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp *string         `json:"timestamp"`
}

// NewMessage builds a message of the given kind around a typed payload.
// A nil payload produces an empty data object.
func NewMessage(kind Kind, payload interface{}) (*Message, error) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &Message{Kind: kind, Data: data}, nil
}

// DecodeData unmarshals the message payload into v.
func (m *Message) DecodeData(v interface{}) error {
	if len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", m.Kind, err)
	}
	return nil
}

// Protocol data structures
type (
	// RegisterData is sent by a node to announce itself to the controller.
	RegisterData struct {
		Hostname   string `json:"hostname"`
		ClientPort int    `json:"client_port"`
	}

	// HeartbeatData is sent periodically by a registered node.
	HeartbeatData struct {
		Hostname string `json:"hostname"`
	}

	// CaptureData carries the shared timestamp for an image capture.
	CaptureData struct {
		Timestamp string `json:"timestamp"`
	}

	// UploadS3Data names the bucket images should be uploaded to.
	UploadS3Data struct {
		BucketName string `json:"bucket_name"`
	}

	// ResponseData is the normalized outcome of any command.
	ResponseData struct {
		Status  string                 `json:"status"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data,omitempty"`
	}

	// ErrorData is sent when a request cannot be routed to a handler.
	ErrorData struct {
		Error string `json:"error"`
	}
)

// NewResponseMessage builds a RESPONSE message from a normalized outcome.
func NewResponseMessage(status, message string, data map[string]interface{}) (*Message, error) {
	return NewMessage(KindResponse, ResponseData{Status: status, Message: message, Data: data})
}

// NewErrorMessage builds an ERROR message carrying a single reason.
func NewErrorMessage(reason string) (*Message, error) {
	return NewMessage(KindError, ErrorData{Error: reason})
}
