package workers

import (
	"context"
	"log/slog"
	"time"

	"moonhall/contract"
	"moonhall/domain/event"
)

const sinkTimeout = 5 * time.Second

// EventFanout broadcasts domain events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
//
// A sink that fails or times out is logged and skipped for that event; the
// remaining sinks still receive it.
type EventFanout struct {
	Log         *slog.Logger
	DomainEvent chan event.DomainEvent
	sinks       []contract.EventSink
}

func NewEventFanout(log *slog.Logger, domainEvent chan event.DomainEvent) *EventFanout {
	return &EventFanout{Log: log, DomainEvent: domainEvent}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.DomainEvent:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping domainEvent send")
			return nil
		}
	}
}

// Fanout One sink for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.Log.Warn("Sink rejected event", "kind", evt.Kind(), "error", err)
		}
		cancel()
	}
}
