package workers

import (
	"context"
	"log/slog"

	"moonhall/docstore"
	"moonhall/projection"
)

// PushWorker feeds the live notification projection from the store's change
// stream. When the stream drops, the projection is reset to its safe empty
// default and the error bubbles up so the supervisor reattaches a fresh
// subscription; the next pushed batch rebuilds the visible state.
type PushWorker struct {
	log   *slog.Logger
	store docstore.Store
	feed  *projection.Feed
}

func NewPushWorker(log *slog.Logger, store docstore.Store, feed *projection.Feed) *PushWorker {
	return &PushWorker{log: log, store: store, feed: feed}
}

func (w *PushWorker) Run(ctx context.Context) error {
	err := w.store.Subscribe(ctx, "notifications", w.feed.Apply)
	if err != nil {
		w.log.Warn("Notification stream dropped", "error", err)
		w.feed.Reset()
	}
	return err
}
