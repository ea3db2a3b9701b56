package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/app"
	"github.com/guggleweed/gateway/internal/core"
	"github.com/guggleweed/gateway/internal/domain"
)

const (
	identityHeader = "x-username"
	meetingHeader  = "x-meeting-id"
)

type Controller struct {
	Orch *app.Orchestrator
}

func NewController(orch *app.Orchestrator) *Controller {
	return &Controller{Orch: orch}
}

// WsConn adapts one gorilla connection to core.SignalConnection. Frames are
// queued on a bounded channel drained by the write pump; a full queue drops
// the frame instead of blocking the sender.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Envelope

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(env core.Envelope) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- env:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades one client connection. Identity and target meeting
// arrive once, as headers; a missing header rejects the connection before
// the upgrade. This is the only condition that ever refuses a client.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	attendee := c.GetHeader(identityHeader)
	meeting := c.GetHeader(meetingHeader)
	if attendee == "" || meeting == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, domain.Fail("missing identity or meeting header"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Envelope, 32),
	}
	sess := &core.Session{
		ConnID:     uuid.NewString(),
		MeetingID:  domain.MeetingID(meeting),
		AttendeeID: domain.AttendeeID(attendee),
		Conn:       conn,
	}
	log.Info().Str("module", "signal").Str("conn", sess.ConnID).Str("meeting", meeting).Str("attendee", attendee).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sess, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess, conn)
	}()
}
