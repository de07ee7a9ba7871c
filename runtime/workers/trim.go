package workers

import (
	"context"
	"log/slog"

	"moonhall/chat"
)

// TrimWorker prunes conversation history off the hot path. Senders queue a
// conversation id after appending; the worker trims in the background so a
// failed or slow prune never delays message delivery.
type TrimWorker struct {
	log      *slog.Logger
	history  *chat.History
	Requests chan string
}

func NewTrimWorker(log *slog.Logger, history *chat.History, requests chan string) *TrimWorker {
	return &TrimWorker{log: log, history: history, Requests: requests}
}

func (w *TrimWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case conversationID := <-w.Requests:
			if err := w.history.Trim(ctx, conversationID); err != nil {
				// Overflow stays readable, the next append queues another pass
				w.log.Warn("Trim pass failed", "conversation", conversationID, "error", err)
			}
		}
	}
}
