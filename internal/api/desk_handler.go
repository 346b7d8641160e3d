package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/pipeline"
	"github.com/voxo-cms/internal/service"
)

// DeskHandler streams AI auto desk runs as server-sent events
type DeskHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDeskHandler creates a new DeskHandler
func NewDeskHandler(services *service.Services, log zerolog.Logger) *DeskHandler {
	return &DeskHandler{
		services: services,
		log:      log.With().Str("handler", "desk").Logger(),
	}
}

// Generate handles POST /api/ai/generate-v3. The response is a
// text/event-stream of state, log and one complete or error event.
func (h *DeskHandler) Generate(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	em := &sseEmitter{c: c}
	postID, err := h.services.Desk.Generate(c.Request.Context(), req, em)
	if err != nil {
		h.log.Warn().Err(err).Msg("Generation ended with an error")
		return
	}
	h.log.Info().Str("post_id", postID).Msg("Generation streamed")
}

// sseEmitter writes pipeline events to the response. Writes after Close
// are dropped; a disconnected client makes writes fail silently.
type sseEmitter struct {
	c      *gin.Context
	mu     sync.Mutex
	closed bool
}

func (e *sseEmitter) send(event string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.c.SSEvent(event, data)
	e.c.Writer.Flush()
}

func (e *sseEmitter) State(stage pipeline.Stage, progress int) {
	e.send(pipeline.EventState, pipeline.StateEvent{Stage: stage, Progress: progress})
}

func (e *sseEmitter) Log(line string) {
	e.send(pipeline.EventLog, line)
}

func (e *sseEmitter) Complete(postID string) {
	e.send(pipeline.EventComplete, pipeline.CompleteEvent{PostID: postID})
}

func (e *sseEmitter) Error(message string) {
	e.send(pipeline.EventError, pipeline.ErrorEvent{Message: message})
}

func (e *sseEmitter) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
