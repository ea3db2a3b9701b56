package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Envelope is one outbound frame to a client. ID echoes the client's request
// id on acks and is zero on server-initiated notifications.
type Envelope struct {
	Event string `json:"event"`
	ID    int64  `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// SignalConnection abstracts one live client transport session.
// Owned by the adapter; the adapter must Close() it. TrySend never blocks:
// a full outbound queue drops the frame and reports ErrBackpressure.
type SignalConnection interface {
	TrySend(Envelope) error
	Close()
}
