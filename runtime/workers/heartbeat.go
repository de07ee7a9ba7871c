package workers

import (
	"context"
	"log/slog"
	"time"

	"moonhall/presence"
)

// HeartbeatWorker keeps the session user visible in the online roster by
// refreshing their last-activity stamp at a fixed interval. A missed beat is
// logged and retried on the next tick; peers simply see the user as stale
// until a beat lands again.
type HeartbeatWorker struct {
	log      *slog.Logger
	tracker  *presence.Tracker
	userID   string
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, tracker *presence.Tracker, userID string) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		tracker:  tracker,
		userID:   userID,
		interval: presence.HeartbeatInterval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting presence heartbeat worker", "user", w.userID)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.tracker.Heartbeat(ctx, w.userID, time.Now()); err != nil {
		w.log.Warn("Heartbeat failed", "user", w.userID, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.farewell()
			return nil
		case <-ticker.C:
			if err := w.tracker.Heartbeat(ctx, w.userID, time.Now()); err != nil {
				w.log.Warn("Heartbeat failed", "user", w.userID, "error", err)
			}
		}
	}
}

// farewell sends one last beat so the roster reflects activity up to the
// moment the session closed. Best effort, the session context is already gone.
func (w *HeartbeatWorker) farewell() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := w.tracker.Heartbeat(ctx, w.userID, time.Now()); err != nil {
		w.log.Debug("Final heartbeat lost", "user", w.userID, "error", err)
	}
}
