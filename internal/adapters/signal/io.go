package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

const (
	writeWait         = 5 * time.Second
	disconnectTimeout = 5 * time.Second
)

func (ctl *Controller) writePump(ctx context.Context, sess *core.Session, c *WsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", sess.ConnID).Msg("writePump ctx done")
			return
		case env, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Str("conn", sess.ConnID).Msg("writePump channel closed")
				return
			}
			b, err := json.Marshal(env)
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("event", env.Event).Msg("writePump marshal")
				continue
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Msg("writePump write error")
				return
			}
		}
	}
}

// readPump is the connection's single dispatcher: one client's frames are
// handled in arrival order, and a handler's in-flight broker call finishes
// before a disconnect can be observed.
func (ctl *Controller) readPump(ctx context.Context, sess *core.Session, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", sess.ConnID).Msg("readPump closing")
		cleanupCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		ctl.Orch.Disconnect(cleanupCtx, sess)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", sess.ConnID).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Msg("readPump read error")
				return
			}
			ctl.handleFrame(ctx, sess, c, data)
		}
	}
}

// ack replies with the uniform result envelope when the client asked for
// one. Fire-and-forget events carry no id and get no reply.
func (ctl *Controller) ack(c *WsConn, id int64, res domain.Result) {
	if id == 0 {
		return
	}
	if err := c.TrySend(core.Envelope{Event: "result", ID: id, Data: res}); err != nil {
		log.Debug().Err(err).Str("module", "signal").Int64("id", id).Msg("ack dropped")
	}
}

func (ctl *Controller) handleFrame(ctx context.Context, sess *core.Session, c *WsConn, data []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Msg("bad json")
		return
	}

	switch env.Event {
	case "join":
		ctl.ack(c, env.ID, ctl.Orch.Join(ctx, sess))
	case "leave":
		ctl.ack(c, env.ID, ctl.Orch.Leave(ctx, sess))
	case "endMeeting":
		ctl.ack(c, env.ID, ctl.Orch.EndMeeting(ctx, sess))
	case "getMeetingInfo":
		ctl.ack(c, env.ID, ctl.Orch.MeetingInfo(ctx, sess.MeetingID))
	case "sendMessage":
		ctl.handleSendMessage(sess, env)
	case "connectTransport":
		ctl.handleConnectTransport(ctx, sess, c, env)
	case "produceMedia":
		ctl.handleProduceMedia(ctx, sess, c, env)
	case "closeProducer", "pauseProducer", "resumeProducer":
		ctl.handleProducerControl(ctx, sess, c, env)
	case "consumeMedia":
		ctl.handleConsumeMedia(ctx, sess, c, env)
	case "closeConsumer", "pauseConsumer", "resumeConsumer":
		ctl.handleConsumerControl(ctx, sess, env)
	case "requestPresentation":
		ctl.ack(c, env.ID, ctl.Orch.RequestPresentation(sess))
	case "acceptPresentation":
		ctl.handleAcceptPresentation(sess, c, env)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown signal")
	}
}
