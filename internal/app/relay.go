package app

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

// Relay subscribes to the shared broker event channel and turns each
// published event into a room-wide or point-to-point delivery. The channel
// is fed by every broker and gateway instance; events addressed to an
// attendee not registered here are dropped, which is an expected race with
// leave/disconnect, not an error.
type Relay struct {
	Registry *Registry
	Redis    *redis.Client
	Channel  string
}

type relayEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// The payload structs double as the client-facing notification bodies, so
// the addressing fields are omitted when empty on the way out.

// attendeeErrorPayload keeps the wire's historical field spelling.
type attendeeErrorPayload struct {
	MeetingID domain.MeetingID  `json:"meetingId,omitempty"`
	AttendeID domain.AttendeeID `json:"attendeId"`
}

type producerEventPayload struct {
	MeetingID    domain.MeetingID  `json:"meetingId,omitempty"`
	AttendeeID   domain.AttendeeID `json:"attendeeId,omitempty"`
	ProducerType string            `json:"producerType"`
	ProducerID   domain.ProducerID `json:"producerId"`
}

type consumerEventPayload struct {
	MeetingID  domain.MeetingID  `json:"meetingId,omitempty"`
	AttendeeID domain.AttendeeID `json:"attendeeId,omitempty"`
	ConsumerID domain.ConsumerID `json:"consumerId"`
}

func (r *Relay) Run(ctx context.Context) {
	pubsub := r.Redis.Subscribe(ctx, r.Channel)
	defer pubsub.Close()

	log.Info().Str("module", "app.relay").Str("channel", r.Channel).Msg("subscribed to broker events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.relay").Msg("relay ctx done")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn().Str("module", "app.relay").Msg("subscription channel closed")
				return
			}
			r.dispatch([]byte(msg.Payload))
		}
	}
}

// dispatch decodes one published message and routes it. A malformed or
// unrecognized message is skipped; it must never fail the subscription.
func (r *Relay) dispatch(raw []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("bad event json")
		return
	}

	switch env.Event {
	case core.EventAttendeeError:
		var p attendeeErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Error().Err(err).Str("module", "app.relay").Str("event", env.Event).Msg("bad event payload")
			return
		}
		r.broadcast(p.MeetingID, env.Event, attendeeErrorPayload{AttendeID: p.AttendeID})

	case core.EventProducerClosed, core.EventProducerPaused, core.EventProducerResumed:
		var p producerEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Error().Err(err).Str("module", "app.relay").Str("event", env.Event).Msg("bad event payload")
			return
		}
		r.deliver(p.MeetingID, p.AttendeeID, env.Event, producerEventPayload{ProducerType: p.ProducerType, ProducerID: p.ProducerID})

	case core.EventConsumerClosed, core.EventConsumerPaused, core.EventConsumerResumed:
		var p consumerEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Error().Err(err).Str("module", "app.relay").Str("event", env.Event).Msg("bad event payload")
			return
		}
		r.deliver(p.MeetingID, p.AttendeeID, env.Event, consumerEventPayload{ConsumerID: p.ConsumerID})

	default:
		log.Debug().Str("module", "app.relay").Str("event", env.Event).Msg("ignoring unknown event kind")
	}
}

func (r *Relay) broadcast(meeting domain.MeetingID, event string, data any) {
	for _, conn := range r.Registry.Handles(meeting) {
		if err := conn.TrySend(core.Envelope{Event: event, Data: data}); err != nil {
			log.Debug().Err(err).Str("module", "app.relay").Str("meeting", string(meeting)).Str("event", event).Msg("broadcast frame dropped")
		}
	}
}

// deliver routes a participant-addressed event to that one connection.
func (r *Relay) deliver(meeting domain.MeetingID, attendee domain.AttendeeID, event string, data any) {
	conn, ok := r.Registry.SocketHandle(meeting, attendee)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("meeting", string(meeting)).Str("attendee", string(attendee)).Str("event", event).Msg("attendee not registered, event dropped")
		return
	}
	if err := conn.TrySend(core.Envelope{Event: event, Data: data}); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("meeting", string(meeting)).Str("attendee", string(attendee)).Str("event", event).Msg("private frame dropped")
	}
}
