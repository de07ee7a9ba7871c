// Package sink holds auxiliary event consumers. Sinks here observe the
// fan-out for side effects; none of them carry domain state.
package sink

import (
	"context"
	"log/slog"

	"moonhall/domain/event"
)

// LogSink writes every domain event to the structured log. Useful next to
// the notification engine when tracing who triggered what.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.log.Info("Domain event",
		"kind", e.Kind(),
		"actor", e.Actor(),
		"at", e.At(),
	)
	return nil
}
