package core

import (
	"context"
	"encoding/json"

	"github.com/guggleweed/gateway/internal/domain"
)

// MediaBroker is the gateway-side view of the media-processing backend.
// One method per remote capability; every method performs exactly one call
// and folds transport errors, non-success statuses and broker-reported
// rejections into a failed Result. No retries at this layer.
type MediaBroker interface {
	StartMeeting(ctx context.Context, host domain.AttendeeID) domain.Result
	EndMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result
	JoinMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result
	LeaveMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result

	ConnectTransport(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, transportType string, dtlsParameters json.RawMessage) domain.Result
	ProduceMedia(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, appData, rtpParameters json.RawMessage) domain.Result
	CloseProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result
	PauseProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result
	ResumeProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result
	ConsumeMedia(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producer domain.ProducerID, rtpCapabilities json.RawMessage) domain.Result
	CloseConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result
	PauseConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result
	ResumeConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result

	MeetingInfo(ctx context.Context, meeting domain.MeetingID) domain.Result
	MeetingHost(ctx context.Context, meeting domain.MeetingID) domain.Result
	MeetingAttendees(ctx context.Context, meeting domain.MeetingID) domain.Result
}
