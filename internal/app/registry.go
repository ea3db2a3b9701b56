package app

import (
	"sync"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
	"github.com/rs/zerolog/log"
)

type meetingEntry struct {
	host      domain.AttendeeID
	attendees map[domain.AttendeeID]core.SignalConnection
}

// Registry is the in-memory routing table from (meeting, attendee) to the
// live connection handle. One instance per process; rebuilt empty on restart.
// It stores handles but never manages their lifecycle.
type Registry struct {
	mu       sync.RWMutex
	meetings map[domain.MeetingID]*meetingEntry
}

func NewRegistry() *Registry {
	return &Registry{meetings: make(map[domain.MeetingID]*meetingEntry)}
}

// OpenMeeting inserts an empty meeting entry. Idempotent: a duplicate start
// never overwrites the recorded host.
func (r *Registry) OpenMeeting(meeting domain.MeetingID, host domain.AttendeeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[meeting]; ok {
		return
	}
	r.meetings[meeting] = &meetingEntry{
		host:      host,
		attendees: make(map[domain.AttendeeID]core.SignalConnection),
	}
	log.Info().Str("module", "app.registry").Str("meeting", string(meeting)).Str("host", string(host)).Msg("opened meeting")
}

// CloseMeeting drops the meeting entry and all its attendee mappings in one
// step; no-op if absent.
func (r *Registry) CloseMeeting(meeting domain.MeetingID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[meeting]; !ok {
		return
	}
	delete(r.meetings, meeting)
	log.Info().Str("module", "app.registry").Str("meeting", string(meeting)).Msg("closed meeting")
}

// OpenAttendee binds a connection handle inside the named meeting.
// First-writer-wins: no-op if the meeting is unknown or the attendee already
// has a mapping, so a stale leftover handle is never overwritten by a race.
func (r *Registry) OpenAttendee(meeting domain.MeetingID, attendee domain.AttendeeID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return
	}
	if _, ok := entry.attendees[attendee]; ok {
		return
	}
	entry.attendees[attendee] = conn
	log.Info().Str("module", "app.registry").Str("meeting", string(meeting)).Str("attendee", string(attendee)).Msg("opened attendee")
}

func (r *Registry) CloseAttendee(meeting domain.MeetingID, attendee domain.AttendeeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return
	}
	delete(entry.attendees, attendee)
	log.Info().Str("module", "app.registry").Str("meeting", string(meeting)).Str("attendee", string(attendee)).Msg("closed attendee")
}

// SocketHandle resolves the live connection for one attendee. A miss is a
// normal outcome, not an error.
func (r *Registry) SocketHandle(meeting domain.MeetingID, attendee domain.AttendeeID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return nil, false
	}
	conn, ok := entry.attendees[attendee]
	return conn, ok
}

func (r *Registry) HostID(meeting domain.MeetingID) (domain.AttendeeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return "", false
	}
	return entry.host, true
}

// Handles snapshots every connection currently in the meeting's room.
func (r *Registry) Handles(meeting domain.MeetingID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return nil
	}
	out := make([]core.SignalConnection, 0, len(entry.attendees))
	for _, conn := range entry.attendees {
		out = append(out, conn)
	}
	return out
}

func (r *Registry) Attendees(meeting domain.MeetingID) []domain.AttendeeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.meetings[meeting]
	if !ok {
		return nil
	}
	out := make([]domain.AttendeeID, 0, len(entry.attendees))
	for id := range entry.attendees {
		out = append(out, id)
	}
	return out
}
