// Package domain contains entity without logic, just meta-data
package domain

type (
	MeetingID  string
	AttendeeID string
	ProducerID string
	ConsumerID string
)

// Meeting is what the gateway knows about a running meeting: its id and the
// attendee who started it. Everything else lives in the media broker.
type Meeting struct {
	ID   MeetingID  `json:"meetingId"`
	Host AttendeeID `json:"hostId"`
}
