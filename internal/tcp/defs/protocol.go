package defs

import "time"

// Kind identifies the type of a protocol message. The set is closed:
// decoding a frame with any other value fails.
type Kind string

// Message kinds
const (
	KindRegister     Kind = "REGISTER"
	KindCapture      Kind = "CAPTURE"
	KindListImages   Kind = "LIST_IMAGES"
	KindUploadS3     Kind = "UPLOAD_S3"
	KindDeleteImages Kind = "DELETE_IMAGES"
	KindResponse     Kind = "RESPONSE"
	KindError        Kind = "ERROR"
	KindHeartbeat    Kind = "HEARTBEAT"
)

// Valid reports whether k belongs to the closed set of message kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRegister, KindCapture, KindListImages, KindUploadS3,
		KindDeleteImages, KindResponse, KindError, KindHeartbeat:
		return true
	}
	return false
}

// Response statuses
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Protocol constants
const (
	// MaxFrameSize caps a frame body; a peer declaring more is a
	// protocol violation and the connection is dropped.
	MaxFrameSize = 4096

	DefaultDiscoveryPort = 8888
	DefaultCommandPort   = 8889

	DialTimeout       = 10 * time.Second
	IOTimeout         = 10 * time.Second
	HeartbeatInterval = 30 * time.Second

	ConnectionRetryDelay = 1 * time.Second
)
