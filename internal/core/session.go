package core

import "github.com/guggleweed/gateway/internal/domain"

// Session is the per-connection signaling state. MeetingID and AttendeeID are
// fixed at connection establishment from request metadata; Joined is mutated
// only by the orchestrator's state machine. A single read pump drives each
// connection, so Session needs no internal locking.
type Session struct {
	ConnID     string
	MeetingID  domain.MeetingID
	AttendeeID domain.AttendeeID
	Joined     bool
	Conn       SignalConnection
}
