// Package broker is the typed RPC facade over the media broker's HTTP
// contract. The broker owns transports, producers and consumers; the gateway
// only relays intents and forwards the broker's uniform result envelope.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

const identityHeader = "x-username"

type Client struct {
	http *resty.Client
}

var _ core.MediaBroker = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

// call issues exactly one request and folds every failure mode (transport
// error, non-2xx status, broker-reported rejection) into a failed Result.
// The caller cannot distinguish them; all require the same recovery.
func (c *Client) call(ctx context.Context, method, path string, attendee domain.AttendeeID, body any) domain.Result {
	req := c.http.R().SetContext(ctx)
	if attendee != "" {
		req.SetHeader(identityHeader, string(attendee))
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		log.Error().Err(err).Str("module", "broker").Str("path", path).Msg("media broker call failed")
		return domain.Fail(err.Error())
	}

	var res domain.Result
	if err := json.Unmarshal(resp.Body(), &res); err != nil || res.Status == "" {
		log.Error().Str("module", "broker").Str("path", path).Str("status", resp.Status()).Msg("unexpected media broker response")
		return domain.Fail(fmt.Sprintf("media broker returned %s", resp.Status()))
	}
	return res
}

func (c *Client) StartMeeting(ctx context.Context, host domain.AttendeeID) domain.Result {
	return c.call(ctx, http.MethodPost, "/meetings/start", host, nil)
}

func (c *Client) EndMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/end", meeting), attendee, nil)
}

func (c *Client) JoinMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/join", meeting), attendee, nil)
}

func (c *Client) LeaveMeeting(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/leave", meeting), attendee, nil)
}

func (c *Client) ConnectTransport(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, transportType string, dtlsParameters json.RawMessage) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/connect", meeting), attendee, map[string]any{
		"transportType":  transportType,
		"dtlsParameters": dtlsParameters,
	})
}

func (c *Client) ProduceMedia(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, appData, rtpParameters json.RawMessage) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/produceMedia", meeting), attendee, map[string]any{
		"appData":       appData,
		"rtpParameters": rtpParameters,
	})
}

func (c *Client) CloseProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/closeProducer", meeting), attendee, map[string]any{
		"producerType": producerType,
	})
}

func (c *Client) PauseProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/pauseProducer", meeting), attendee, map[string]any{
		"producerType": producerType,
	})
}

func (c *Client) ResumeProducer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producerType string) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/resumeProducer", meeting), attendee, map[string]any{
		"producerType": producerType,
	})
}

func (c *Client) ConsumeMedia(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, producer domain.ProducerID, rtpCapabilities json.RawMessage) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/consumeMedia", meeting), attendee, map[string]any{
		"producerId":      producer,
		"rtpCapabilities": rtpCapabilities,
	})
}

func (c *Client) CloseConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/closeConsumer", meeting), attendee, map[string]any{
		"consumerId": consumer,
	})
}

func (c *Client) PauseConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/pauseConsumer", meeting), attendee, map[string]any{
		"consumerId": consumer,
	})
}

func (c *Client) ResumeConsumer(ctx context.Context, meeting domain.MeetingID, attendee domain.AttendeeID, consumer domain.ConsumerID) domain.Result {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/meetings/%s/resumeConsumer", meeting), attendee, map[string]any{
		"consumerId": consumer,
	})
}

func (c *Client) MeetingInfo(ctx context.Context, meeting domain.MeetingID) domain.Result {
	return c.call(ctx, http.MethodGet, fmt.Sprintf("/meetings/%s", meeting), "", nil)
}

func (c *Client) MeetingHost(ctx context.Context, meeting domain.MeetingID) domain.Result {
	return c.call(ctx, http.MethodGet, fmt.Sprintf("/meetings/%s/hostId", meeting), "", nil)
}

func (c *Client) MeetingAttendees(ctx context.Context, meeting domain.MeetingID) domain.Result {
	return c.call(ctx, http.MethodGet, fmt.Sprintf("/meetings/%s/attendees", meeting), "", nil)
}
