package presence

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"moonhall/docstore"
	"moonhall/domain"
)

func openStore(t *testing.T) docstore.Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return docstore.NewBadgerStore(db, slog.Default())
}

func Test_IsOnline_Threshold(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(openStore(t), slog.Default(), 5*time.Minute)
	now := time.UnixMilli(1_700_000_000_000)

	req.True(tracker.IsOnline(domain.User{LastActive: now.Add(-time.Minute)}, now))
	req.False(tracker.IsOnline(domain.User{LastActive: now.Add(-5 * time.Minute)}, now))
	req.False(tracker.IsOnline(domain.User{}, now))
}

func Test_Heartbeat_Then_Roster(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	tracker := NewTracker(store, slog.Default(), 5*time.Minute)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	req.NoError(store.Update(ctx, "users", "selene", map[string]any{"displayName": "Selene"}))
	req.NoError(store.Update(ctx, "users", "marrok", map[string]any{"displayName": "Marrok"}))

	req.NoError(tracker.Heartbeat(ctx, "selene", now))
	req.NoError(tracker.Heartbeat(ctx, "marrok", now.Add(-time.Hour)))

	online, err := tracker.Roster(ctx, now)
	req.NoError(err)
	req.Len(online, 1)
	req.Equal("selene", online[0].ID)
}

func Test_Roster_Hides_Invisible_Users(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	tracker := NewTracker(store, slog.Default(), 5*time.Minute)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	req.NoError(store.Update(ctx, "users", "selene", map[string]any{
		"displayName": "Selene",
		"effects":     map[string]any{string(domain.EffectInvisible): now.Add(time.Minute).UnixMilli()},
	}))
	req.NoError(tracker.Heartbeat(ctx, "selene", now))

	online, err := tracker.Roster(ctx, now)
	req.NoError(err)
	req.Empty(online)

	// Once the potion wears off the user surfaces again without any write.
	later := now.Add(2 * time.Minute)
	req.NoError(tracker.Heartbeat(ctx, "selene", later))
	online, err = tracker.Roster(ctx, later)
	req.NoError(err)
	req.Len(online, 1)
}
