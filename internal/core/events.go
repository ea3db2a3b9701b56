package core

// Server-to-client notification kinds.
const (
	EventAttendeeJoined        = "attendeeJoined"
	EventAttendeeLeft          = "attendeeLeft"
	EventAttendeeDisconnected  = "attendeeDisconnected"
	EventMessageSent           = "messageSent"
	EventMeetingEnded          = "meetingEnded"
	EventProducerCreated       = "producerCreated"
	EventProducerClosed        = "producerClosed"
	EventProducerPaused        = "producerPaused"
	EventProducerResumed       = "producerResumed"
	EventConsumerClosed        = "consumerClosed"
	EventConsumerPaused        = "consumerPaused"
	EventConsumerResumed       = "consumerResumed"
	EventAttendeeError         = "attendeeError"
	EventPresentationRequested = "presentationRequested"
	EventPresentationAccepted  = "presentationAccepted"
)
