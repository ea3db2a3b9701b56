package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guggleweed/gateway/internal/adapters/signal"
	"github.com/guggleweed/gateway/internal/app"
	"github.com/guggleweed/gateway/internal/config"
	"github.com/guggleweed/gateway/internal/domain"
)

const identityHeader = "x-username"

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctrl := signal.NewController(orch)
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	// Management surface: every route answers with the same success/failure
	// envelope the signaling callbacks use.
	meetings := r.Group("/meetings")

	meetings.GET("/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.MeetingInfo(c.Request.Context(), domain.MeetingID(c.Param("id"))))
	})

	meetings.GET("/:id/hostId", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.MeetingHost(c.Request.Context(), domain.MeetingID(c.Param("id"))))
	})

	meetings.GET("/:id/attendees", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.MeetingAttendees(c.Request.Context(), domain.MeetingID(c.Param("id"))))
	})

	meetings.POST("/start", func(c *gin.Context) {
		host := c.GetHeader(identityHeader)
		if host == "" {
			c.JSON(http.StatusBadRequest, domain.Fail("missing identity header"))
			return
		}
		c.JSON(http.StatusOK, orch.StartMeeting(c.Request.Context(), domain.AttendeeID(host)))
	})

	meetings.POST("/:id/end", func(c *gin.Context) {
		attendee := c.GetHeader(identityHeader)
		if attendee == "" {
			c.JSON(http.StatusBadRequest, domain.Fail("missing identity header"))
			return
		}
		c.JSON(http.StatusOK, orch.EndMeetingAs(c.Request.Context(), domain.MeetingID(c.Param("id")), domain.AttendeeID(attendee)))
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
