package app

import (
	"context"
	"encoding/json"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	msgAlreadyJoined = "You have already joined a meeting"
	msgNotJoined     = "You haven't joined a meeting yet"
	msgNotHost       = "Only the meeting host can do that"
)

type attendeeRef struct {
	AttendeeID domain.AttendeeID `json:"attendeeId"`
}

type chatMessage struct {
	Sender  domain.AttendeeID `json:"sender"`
	Message string            `json:"message"`
}

type producerCreated struct {
	AttendeeID domain.AttendeeID `json:"attendeeId"`
	ProducerID domain.ProducerID `json:"producerId"`
}

// Orchestrator drives the per-connection signaling state machine: it gates
// every action on membership state, forwards intents to the media broker and
// mirrors confirmed transitions into the registry and the meeting's room.
type Orchestrator struct {
	Registry *Registry
	Broker   core.MediaBroker
}

func (o *Orchestrator) broadcast(meeting domain.MeetingID, event string, data any) {
	for _, conn := range o.Registry.Handles(meeting) {
		if err := conn.TrySend(core.Envelope{Event: event, Data: data}); err != nil {
			log.Debug().Err(err).Str("module", "app.orch").Str("meeting", string(meeting)).Str("event", event).Msg("broadcast frame dropped")
		}
	}
}

// StartMeeting asks the broker for a new meeting and records the caller as
// its host. The host identity is fixed here and never re-derived from a
// later request.
func (o *Orchestrator) StartMeeting(ctx context.Context, host domain.AttendeeID) domain.Result {
	res := o.Broker.StartMeeting(ctx, host)
	if !res.OK() {
		return res
	}
	var data struct {
		MeetingID domain.MeetingID `json:"meetingId"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil || data.MeetingID == "" {
		log.Error().Str("module", "app.orch").Str("host", string(host)).Msg("broker start response carried no meeting id")
		return domain.Fail("media broker returned a malformed meeting id")
	}
	o.Registry.OpenMeeting(data.MeetingID, host)
	return res
}

// Join moves the connection from not-joined to joined. The local state flips
// and the registry mapping is inserted only after the broker confirms, and
// the room is told only after the mapping exists.
func (o *Orchestrator) Join(ctx context.Context, sess *core.Session) domain.Result {
	if sess.Joined {
		return domain.Fail(msgAlreadyJoined)
	}
	res := o.Broker.JoinMeeting(ctx, sess.MeetingID, sess.AttendeeID)
	if !res.OK() {
		return res
	}
	sess.Joined = true
	o.ensureMeeting(ctx, sess.MeetingID)
	o.Registry.OpenAttendee(sess.MeetingID, sess.AttendeeID, sess.Conn)
	o.broadcast(sess.MeetingID, core.EventAttendeeJoined, attendeeRef{sess.AttendeeID})
	return res
}

// ensureMeeting adopts a meeting started on another gateway instance: the
// broker's host record is fetched once and fixed locally, so routing and
// host checks work on every instance a participant lands on.
func (o *Orchestrator) ensureMeeting(ctx context.Context, meeting domain.MeetingID) {
	if _, ok := o.Registry.HostID(meeting); ok {
		return
	}
	res := o.Broker.MeetingHost(ctx, meeting)
	if !res.OK() {
		log.Warn().Str("module", "app.orch").Str("meeting", string(meeting)).Str("reason", res.Message).Msg("could not resolve host for remote meeting")
		return
	}
	var data struct {
		HostID domain.AttendeeID `json:"hostId"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil || data.HostID == "" {
		log.Warn().Str("module", "app.orch").Str("meeting", string(meeting)).Msg("broker host response carried no host id")
		return
	}
	o.Registry.OpenMeeting(meeting, data.HostID)
}

func (o *Orchestrator) Leave(ctx context.Context, sess *core.Session) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	res := o.Broker.LeaveMeeting(ctx, sess.MeetingID, sess.AttendeeID)
	if !res.OK() {
		return res
	}
	sess.Joined = false
	o.Registry.CloseAttendee(sess.MeetingID, sess.AttendeeID)
	o.broadcast(sess.MeetingID, core.EventAttendeeLeft, attendeeRef{sess.AttendeeID})
	return res
}

// Disconnect is the involuntary leave path. The broker notify is best
// effort; local cleanup always proceeds so a dropped client never stays
// occupying the room.
func (o *Orchestrator) Disconnect(ctx context.Context, sess *core.Session) {
	if !sess.Joined {
		return
	}
	if res := o.Broker.LeaveMeeting(ctx, sess.MeetingID, sess.AttendeeID); !res.OK() {
		log.Warn().Str("module", "app.orch").Str("meeting", string(sess.MeetingID)).Str("attendee", string(sess.AttendeeID)).Str("reason", res.Message).Msg("broker leave on disconnect failed")
	}
	sess.Joined = false
	o.Registry.CloseAttendee(sess.MeetingID, sess.AttendeeID)
	o.broadcast(sess.MeetingID, core.EventAttendeeDisconnected, attendeeRef{sess.AttendeeID})
}

func (o *Orchestrator) EndMeeting(ctx context.Context, sess *core.Session) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.EndMeetingAs(ctx, sess.MeetingID, sess.AttendeeID)
}

// EndMeetingAs enforces host authority against the identity recorded at
// start time, then tears the meeting down. The room is told before the
// registry entry vanishes, while the handles are still resolvable.
func (o *Orchestrator) EndMeetingAs(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result {
	host, ok := o.Registry.HostID(meeting)
	if !ok || host != attendee {
		return domain.Fail(msgNotHost)
	}
	res := o.Broker.EndMeeting(ctx, meeting, attendee)
	if !res.OK() {
		return res
	}
	o.broadcast(meeting, core.EventMeetingEnded, nil)
	o.Registry.CloseMeeting(meeting)
	return res
}

// SendMessage relays free-text chat to the meeting's room verbatim. No
// broker call, no persistence.
func (o *Orchestrator) SendMessage(sess *core.Session, message string) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	o.broadcast(sess.MeetingID, core.EventMessageSent, chatMessage{Sender: sess.AttendeeID, Message: message})
	return domain.Ok(nil)
}

func (o *Orchestrator) ConnectTransport(ctx context.Context, sess *core.Session, transportType string, dtlsParameters json.RawMessage) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.ConnectTransport(ctx, sess.MeetingID, sess.AttendeeID, transportType, dtlsParameters)
}

func (o *Orchestrator) ProduceMedia(ctx context.Context, sess *core.Session, appData, rtpParameters json.RawMessage) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	res := o.Broker.ProduceMedia(ctx, sess.MeetingID, sess.AttendeeID, appData, rtpParameters)
	if !res.OK() {
		return res
	}
	var data struct {
		ProducerID domain.ProducerID `json:"producerId"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("meeting", string(sess.MeetingID)).Msg("broker produce response carried no producer id")
		return res
	}
	o.broadcast(sess.MeetingID, core.EventProducerCreated, producerCreated{AttendeeID: sess.AttendeeID, ProducerID: data.ProducerID})
	return res
}

func (o *Orchestrator) CloseProducer(ctx context.Context, sess *core.Session, producerType string) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.CloseProducer(ctx, sess.MeetingID, sess.AttendeeID, producerType)
}

func (o *Orchestrator) PauseProducer(ctx context.Context, sess *core.Session, producerType string) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.PauseProducer(ctx, sess.MeetingID, sess.AttendeeID, producerType)
}

func (o *Orchestrator) ResumeProducer(ctx context.Context, sess *core.Session, producerType string) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.ResumeProducer(ctx, sess.MeetingID, sess.AttendeeID, producerType)
}

func (o *Orchestrator) ConsumeMedia(ctx context.Context, sess *core.Session, producer domain.ProducerID, rtpCapabilities json.RawMessage) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.ConsumeMedia(ctx, sess.MeetingID, sess.AttendeeID, producer, rtpCapabilities)
}

func (o *Orchestrator) CloseConsumer(ctx context.Context, sess *core.Session, consumer domain.ConsumerID) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.CloseConsumer(ctx, sess.MeetingID, sess.AttendeeID, consumer)
}

func (o *Orchestrator) PauseConsumer(ctx context.Context, sess *core.Session, consumer domain.ConsumerID) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.PauseConsumer(ctx, sess.MeetingID, sess.AttendeeID, consumer)
}

func (o *Orchestrator) ResumeConsumer(ctx context.Context, sess *core.Session, consumer domain.ConsumerID) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	return o.Broker.ResumeConsumer(ctx, sess.MeetingID, sess.AttendeeID, consumer)
}

// RequestPresentation starts the 2-party negotiation. A request from the
// host auto-resolves to an acceptance for the whole room; anyone else's
// request is routed privately to the host's current connection.
func (o *Orchestrator) RequestPresentation(sess *core.Session) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	host, ok := o.Registry.HostID(sess.MeetingID)
	if !ok {
		return domain.Fail("the meeting is not tracked by this gateway")
	}
	if host == sess.AttendeeID {
		o.broadcast(sess.MeetingID, core.EventPresentationAccepted, attendeeRef{sess.AttendeeID})
		return domain.Ok(nil)
	}
	conn, ok := o.Registry.SocketHandle(sess.MeetingID, host)
	if !ok {
		return domain.Fail("the host is not connected")
	}
	if err := conn.TrySend(core.Envelope{Event: core.EventPresentationRequested, Data: attendeeRef{sess.AttendeeID}}); err != nil {
		return domain.Fail("the host is not reachable")
	}
	return domain.Ok(nil)
}

func (o *Orchestrator) AcceptPresentation(sess *core.Session, attendee domain.AttendeeID) domain.Result {
	if !sess.Joined {
		return domain.Fail(msgNotJoined)
	}
	host, ok := o.Registry.HostID(sess.MeetingID)
	if !ok || host != sess.AttendeeID {
		return domain.Fail(msgNotHost)
	}
	o.broadcast(sess.MeetingID, core.EventPresentationAccepted, attendeeRef{attendee})
	return domain.Ok(nil)
}

func (o *Orchestrator) MeetingInfo(ctx context.Context, meeting domain.MeetingID) domain.Result {
	return o.Broker.MeetingInfo(ctx, meeting)
}

// MeetingHost serves the locally recorded host when the meeting is known
// here and falls back to the broker otherwise (another gateway instance may
// have opened it). Authorization never uses the fallback.
func (o *Orchestrator) MeetingHost(ctx context.Context, meeting domain.MeetingID) domain.Result {
	if host, ok := o.Registry.HostID(meeting); ok {
		return domain.Ok(map[string]domain.AttendeeID{"hostId": host})
	}
	return o.Broker.MeetingHost(ctx, meeting)
}

func (o *Orchestrator) MeetingAttendees(ctx context.Context, meeting domain.MeetingID) domain.Result {
	return o.Broker.MeetingAttendees(ctx, meeting)
}
