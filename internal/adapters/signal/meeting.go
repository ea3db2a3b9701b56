package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

func (ctl *Controller) handleSendMessage(sess *core.Session, env inboundEnvelope) {
	var p sendMessagePayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", sess.ConnID).Msg("bad sendMessage payload")
		return
	}
	// Chat has no acknowledgement channel; a rejected message is silent.
	if res := ctl.Orch.SendMessage(sess, p.Message); !res.OK() {
		log.Debug().Str("module", "signal").Str("conn", sess.ConnID).Str("reason", res.Message).Msg("chat message rejected")
	}
}

func (ctl *Controller) handleAcceptPresentation(sess *core.Session, c *WsConn, env inboundEnvelope) {
	var p acceptPresentationPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.ack(c, env.ID, domain.Fail("bad payload"))
		return
	}
	ctl.ack(c, env.ID, ctl.Orch.AcceptPresentation(sess, p.AttendeeID))
}
