// Package presence derives who is online from heartbeat recency. Presence
// is approximate: a missed heartbeat write is simply retried on the next
// tick, and the staleness threshold is far looser than the beat period to
// absorb the gaps.
package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/effects"
)

const (
	// HeartbeatInterval is how often an open session refreshes lastActive.
	HeartbeatInterval = 20 * time.Second
	// DefaultStaleAfter is how long after the last beat a user still
	// counts as online.
	DefaultStaleAfter = 5 * time.Minute
)

type Tracker struct {
	store      docstore.Store
	log        *slog.Logger
	staleAfter time.Duration
}

func NewTracker(store docstore.Store, log *slog.Logger, staleAfter time.Duration) *Tracker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Tracker{store: store, log: log, staleAfter: staleAfter}
}

// Heartbeat stamps the user's lastActive. Callers treat a failure as
// droppable: the next tick writes again.
func (t *Tracker) Heartbeat(ctx context.Context, userID string, now time.Time) error {
	return t.store.Update(ctx, "users", userID, map[string]any{
		"lastActive": now.UnixMilli(),
	})
}

// IsOnline reports whether the user's last beat is recent enough.
func (t *Tracker) IsOnline(u domain.User, now time.Time) bool {
	return !u.LastActive.IsZero() && now.Sub(u.LastActive) < t.staleAfter
}

// Roster returns the users currently considered online, excluding anyone
// hiding behind a live invisibility effect. The whole list is recomputed
// from user records on every call; nothing here is cached.
func (t *Tracker) Roster(ctx context.Context, now time.Time) ([]domain.User, error) {
	docs, err := t.store.Query(ctx, "users", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	users := lo.Map(docs, func(doc docstore.Document, _ int) domain.User {
		return domain.UserFromData(doc.ID, doc.Data)
	})
	online := lo.Filter(users, func(u domain.User, _ int) bool {
		return t.IsOnline(u, now) && !effects.IsActive(u, domain.EffectInvisible, now)
	})
	return online, nil
}
