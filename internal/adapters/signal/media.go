package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

func (ctl *Controller) handleConnectTransport(ctx context.Context, sess *core.Session, c *WsConn, env inboundEnvelope) {
	var p connectTransportPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.ack(c, env.ID, domain.Fail("bad payload"))
		return
	}
	ctl.ack(c, env.ID, ctl.Orch.ConnectTransport(ctx, sess, p.TransportType, p.DtlsParameters))
}

func (ctl *Controller) handleProduceMedia(ctx context.Context, sess *core.Session, c *WsConn, env inboundEnvelope) {
	var p produceMediaPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.ack(c, env.ID, domain.Fail("bad payload"))
		return
	}
	ctl.ack(c, env.ID, ctl.Orch.ProduceMedia(ctx, sess, p.AppData, p.RtpParameters))
}

func (ctl *Controller) handleProducerControl(ctx context.Context, sess *core.Session, c *WsConn, env inboundEnvelope) {
	var p producerPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.ack(c, env.ID, domain.Fail("bad payload"))
		return
	}
	switch env.Event {
	case "closeProducer":
		ctl.ack(c, env.ID, ctl.Orch.CloseProducer(ctx, sess, p.ProducerType))
	case "pauseProducer":
		ctl.ack(c, env.ID, ctl.Orch.PauseProducer(ctx, sess, p.ProducerType))
	case "resumeProducer":
		ctl.ack(c, env.ID, ctl.Orch.ResumeProducer(ctx, sess, p.ProducerType))
	}
}

func (ctl *Controller) handleConsumeMedia(ctx context.Context, sess *core.Session, c *WsConn, env inboundEnvelope) {
	var p consumeMediaPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.ack(c, env.ID, domain.Fail("bad payload"))
		return
	}
	ctl.ack(c, env.ID, ctl.Orch.ConsumeMedia(ctx, sess, p.ProducerID, p.RtpCapabilities))
}

// Consumer controls are fire-and-forget: the client holds no pending state
// on them, so failures are logged and never surfaced.
func (ctl *Controller) handleConsumerControl(ctx context.Context, sess *core.Session, env inboundEnvelope) {
	var p consumerPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Str("event", env.Event).Msg("bad consumer payload")
		return
	}

	var res domain.Result
	switch env.Event {
	case "closeConsumer":
		res = ctl.Orch.CloseConsumer(ctx, sess, p.ConsumerID)
	case "pauseConsumer":
		res = ctl.Orch.PauseConsumer(ctx, sess, p.ConsumerID)
	case "resumeConsumer":
		res = ctl.Orch.ResumeConsumer(ctx, sess, p.ConsumerID)
	}
	if !res.OK() {
		log.Debug().Str("module", "signal").Str("conn", sess.ConnID).Str("event", env.Event).Str("reason", res.Message).Msg("consumer control failed")
	}
}
