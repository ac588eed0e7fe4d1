package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/caroica/carousel/internal/roster"
	"github.com/caroica/carousel/internal/rotation"
	"github.com/caroica/carousel/internal/stream"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// registerRoutes sets up the rotation API routes.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	events := router.Group("/events/:eventID")
	events.POST("/create-video-chat-session", handleGenerate(opts))
	events.GET("/live/:email/next-user-to-match", handleNextMatch(opts))
	events.GET("/video-chat-sessions", handleListSessions(opts))
	events.PUT("/video-chat-session", handleUpdateSession(opts))
}

// updateSessionRequest is the administrative override body.
type updateSessionRequest struct {
	ID     uint   `json:"id" binding:"required"`
	Status string `json:"status" binding:"required,oneof=available busy completed"`
}

func handleGenerate(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := eventIDParam(c)
		if !ok {
			return
		}

		sessions, err := rotation.GenerateSchedule(opts.DB, eventID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		publish(c, opts, stream.Record{
			Kind:    stream.KindScheduleGenerated,
			EventID: eventID,
			Count:   len(sessions),
		})
		post(opts, fmt.Sprintf("event %d: rotation schedule generated, %d sessions", eventID, len(sessions)))
		c.JSON(http.StatusCreated, gin.H{"sessions": sessions})
	}
}

func handleNextMatch(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := eventIDParam(c)
		if !ok {
			return
		}
		email := c.Param("email")

		match, err := rotation.NextMatch(opts.DB, eventID, email,
			rotation.MatchOpts{GlobalExclusion: opts.GlobalExclusion})
		if err != nil {
			abortWithError(c, err)
			return
		}

		if !match.Rejoined {
			publish(c, opts, stream.Record{
				Kind:      stream.KindMatchClaimed,
				EventID:   eventID,
				SessionID: match.SessionID,
			})
		}
		c.JSON(http.StatusOK, match)
	}
}

func handleListSessions(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := eventIDParam(c)
		if !ok {
			return
		}

		sessions, err := rotation.ListSessions(opts.DB, eventID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	}
}

func handleUpdateSession(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := eventIDParam(c)
		if !ok {
			return
		}

		var req updateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}

		session, err := rotation.AdminUpdate(opts.DB, eventID, req.ID, req.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}

		publish(c, opts, stream.SessionRecord(stream.KindSessionUpdated, session))
		c.JSON(http.StatusOK, session)
	}
}

// eventIDParam parses the :eventID path segment, writing a 404 on
// malformed input.
func eventIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("eventID"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return 0, false
	}
	return uint(id), true
}

// abortWithError maps an engine error to its HTTP status.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, roster.ErrEventNotFound),
		errors.Is(err, rotation.ErrRoomNotFound),
		errors.Is(err, rotation.ErrSessionNotFound),
		errors.Is(err, rotation.ErrNoAvailableMatch):
		status = http.StatusNotFound
	case errors.Is(err, roster.ErrInsufficientParticipants),
		errors.Is(err, rotation.ErrInvalidStatus):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// publish sends a lifecycle record after a successful mutation.
// Best-effort: failures are logged, never surfaced to the client.
func publish(c *gin.Context, opts StartOpts, rec stream.Record) {
	if opts.Publisher == nil {
		return
	}
	if err := opts.Publisher.Publish(c.Request.Context(), rec); err != nil && opts.Logger != nil {
		opts.Logger.Warn("publish lifecycle record", zap.String("kind", rec.Kind), zap.Error(err))
	}
}

// post sends an organizer alert. Best-effort like publish.
func post(opts StartOpts, text string) {
	if opts.Notifier == nil {
		return
	}
	if err := opts.Notifier.Post(text); err != nil && opts.Logger != nil {
		opts.Logger.Warn("post organizer alert", zap.Error(err))
	}
}
