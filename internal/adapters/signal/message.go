package signal

import (
	"encoding/json"

	"github.com/guggleweed/gateway/internal/domain"
)

// inboundEnvelope is one client frame. ID correlates a request with its
// result ack; fire-and-forget events carry no id.
type inboundEnvelope struct {
	Event string          `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type sendMessagePayload struct {
	Message string `json:"message"`
}

type connectTransportPayload struct {
	TransportType  string          `json:"transportType"`
	DtlsParameters json.RawMessage `json:"dtlsParameters"`
}

type produceMediaPayload struct {
	AppData       json.RawMessage `json:"appData"`
	RtpParameters json.RawMessage `json:"rtpParameters"`
}

type producerPayload struct {
	ProducerType string `json:"producerType"`
}

type consumeMediaPayload struct {
	ProducerID      domain.ProducerID `json:"producerId"`
	RtpCapabilities json.RawMessage   `json:"rtpCapabilities"`
}

type consumerPayload struct {
	ConsumerID domain.ConsumerID `json:"consumerId"`
}

type acceptPresentationPayload struct {
	AttendeeID domain.AttendeeID `json:"attendeeId"`
}
