package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies command and task_id from the event context into the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if name := GetCommand(ctx); name != "" {
		e.Str("command", name)
	}

	if id := GetTaskID(ctx); id != "" {
		e.Str("task_id", id)
	}
}
