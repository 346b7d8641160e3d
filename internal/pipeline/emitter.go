package pipeline

import (
	"github.com/rs/zerolog"
)

// Event names on the progress stream
const (
	EventState    = "state"
	EventLog      = "log"
	EventComplete = "complete"
	EventError    = "error"
)

// StateEvent reports the stage that just started
type StateEvent struct {
	Stage    Stage `json:"stage"`
	Progress int   `json:"progress"`
}

// CompleteEvent carries the id of the created post
type CompleteEvent struct {
	PostID string `json:"postId"`
}

// ErrorEvent carries the failure message shown to the editor
type ErrorEvent struct {
	Message string `json:"message"`
}

// Emitter receives progress of one run. A run ends with exactly one
// Complete or Error call followed by Close.
type Emitter interface {
	State(stage Stage, progress int)
	Log(line string)
	Complete(postID string)
	Error(message string)
	Close()
}

// terminalGuard drops any terminal event after the first
type terminalGuard struct {
	Emitter
	done bool
}

func (g *terminalGuard) Complete(postID string) {
	if g.done {
		return
	}
	g.done = true
	g.Emitter.Complete(postID)
}

func (g *terminalGuard) Error(message string) {
	if g.done {
		return
	}
	g.done = true
	g.Emitter.Error(message)
}

// LogEmitter writes events as structured log lines
type LogEmitter struct {
	log zerolog.Logger
}

// NewLogEmitter creates an Emitter for terminal use
func NewLogEmitter(log zerolog.Logger) *LogEmitter {
	return &LogEmitter{log: log.With().Str("component", "desk").Logger()}
}

func (e *LogEmitter) State(stage Stage, progress int) {
	e.log.Info().Str("stage", string(stage)).Int("progress", progress).Msg("Stage started")
}

func (e *LogEmitter) Log(line string) {
	e.log.Info().Msg(line)
}

func (e *LogEmitter) Complete(postID string) {
	e.log.Info().Str("post_id", postID).Msg("Draft created")
}

func (e *LogEmitter) Error(message string) {
	e.log.Error().Str("message", message).Msg("Generation failed")
}

func (e *LogEmitter) Close() {}
