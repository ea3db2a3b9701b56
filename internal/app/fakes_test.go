package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

type fakeConn struct {
	mu   sync.Mutex
	sent []core.Envelope
}

func (c *fakeConn) TrySend(env core.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, env)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) events(kind string) []core.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []core.Envelope
	for _, env := range c.sent {
		if env.Event == kind {
			out = append(out, env)
		}
	}
	return out
}

// fakeBroker records every call and answers from scripted per-method
// failures or success payloads; unscripted methods succeed with empty data.
type fakeBroker struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]string
	data  map[string]string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		calls: make(map[string]int),
		fail:  make(map[string]string),
		data:  make(map[string]string),
	}
}

func (b *fakeBroker) record(method string) domain.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[method]++
	if msg, ok := b.fail[method]; ok {
		return domain.Fail(msg)
	}
	if d, ok := b.data[method]; ok {
		return domain.OkRaw(json.RawMessage(d))
	}
	return domain.Ok(nil)
}

func (b *fakeBroker) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *fakeBroker) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *fakeBroker) StartMeeting(context.Context, domain.AttendeeID) domain.Result {
	return b.record("StartMeeting")
}

func (b *fakeBroker) EndMeeting(context.Context, domain.MeetingID, domain.AttendeeID) domain.Result {
	return b.record("EndMeeting")
}

func (b *fakeBroker) JoinMeeting(context.Context, domain.MeetingID, domain.AttendeeID) domain.Result {
	return b.record("JoinMeeting")
}

func (b *fakeBroker) LeaveMeeting(context.Context, domain.MeetingID, domain.AttendeeID) domain.Result {
	return b.record("LeaveMeeting")
}

func (b *fakeBroker) ConnectTransport(context.Context, domain.MeetingID, domain.AttendeeID, string, json.RawMessage) domain.Result {
	return b.record("ConnectTransport")
}

func (b *fakeBroker) ProduceMedia(context.Context, domain.MeetingID, domain.AttendeeID, json.RawMessage, json.RawMessage) domain.Result {
	return b.record("ProduceMedia")
}

func (b *fakeBroker) CloseProducer(context.Context, domain.MeetingID, domain.AttendeeID, string) domain.Result {
	return b.record("CloseProducer")
}

func (b *fakeBroker) PauseProducer(context.Context, domain.MeetingID, domain.AttendeeID, string) domain.Result {
	return b.record("PauseProducer")
}

func (b *fakeBroker) ResumeProducer(context.Context, domain.MeetingID, domain.AttendeeID, string) domain.Result {
	return b.record("ResumeProducer")
}

func (b *fakeBroker) ConsumeMedia(context.Context, domain.MeetingID, domain.AttendeeID, domain.ProducerID, json.RawMessage) domain.Result {
	return b.record("ConsumeMedia")
}

func (b *fakeBroker) CloseConsumer(context.Context, domain.MeetingID, domain.AttendeeID, domain.ConsumerID) domain.Result {
	return b.record("CloseConsumer")
}

func (b *fakeBroker) PauseConsumer(context.Context, domain.MeetingID, domain.AttendeeID, domain.ConsumerID) domain.Result {
	return b.record("PauseConsumer")
}

func (b *fakeBroker) ResumeConsumer(context.Context, domain.MeetingID, domain.AttendeeID, domain.ConsumerID) domain.Result {
	return b.record("ResumeConsumer")
}

func (b *fakeBroker) MeetingInfo(context.Context, domain.MeetingID) domain.Result {
	return b.record("MeetingInfo")
}

func (b *fakeBroker) MeetingHost(context.Context, domain.MeetingID) domain.Result {
	return b.record("MeetingHost")
}

func (b *fakeBroker) MeetingAttendees(context.Context, domain.MeetingID) domain.Result {
	return b.record("MeetingAttendees")
}
