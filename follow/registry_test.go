package follow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"moonhall/contract"
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

// Both strategies must pass the same interface-level contract.
func registries(t *testing.T) map[string]contract.FollowerRegistry {
	t.Helper()
	return map[string]contract.FollowerRegistry{
		"scan":  NewScanRegistry(openStore(t), slog.Default()),
		"index": NewIndexRegistry(openStore(t), slog.Default()),
	}
}

func moonTopic() domain.FollowedTopic {
	return domain.FollowedTopic{
		TopicID:    "t-moon",
		Title:      "The moon garden at dusk",
		Forum:      "moongarden",
		FollowedAt: time.UnixMilli(1_700_000_000_000),
	}
}

func Test_Follow_Twice_Keeps_One_Entry(t *testing.T) {
	for name, registry := range registries(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			req.NoError(registry.Follow(ctx, "selene", moonTopic()))
			req.NoError(registry.Follow(ctx, "selene", moonTopic()))

			followers, err := registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Equal([]string{"selene"}, followers)
		})
	}
}

func Test_FollowersOf_Tracks_Follow_And_Unfollow(t *testing.T) {
	for name, registry := range registries(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			req.NoError(registry.Follow(ctx, "selene", moonTopic()))
			req.NoError(registry.Follow(ctx, "marrok", moonTopic()))

			followers, err := registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Equal([]string{"marrok", "selene"}, followers)

			req.NoError(registry.Unfollow(ctx, "selene", "t-moon"))
			followers, err = registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Equal([]string{"marrok"}, followers)
		})
	}
}

func Test_Unfollow_Without_Follow_Is_A_NoOp(t *testing.T) {
	for name, registry := range registries(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			req.NoError(registry.Unfollow(ctx, "selene", "t-moon"))
			followers, err := registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Empty(followers)
		})
	}
}

func Test_FollowersOf_Never_Invents_Followers(t *testing.T) {
	for name, registry := range registries(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			other := moonTopic()
			other.TopicID = "t-other"
			req.NoError(registry.Follow(ctx, "selene", other))

			followers, err := registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Empty(followers)
		})
	}
}

func Test_AutoFollow_Is_Exactly_Once(t *testing.T) {
	for name, registry := range registries(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			req.NoError(AutoFollow(ctx, registry, "selene", moonTopic()))
			req.NoError(AutoFollow(ctx, registry, "selene", moonTopic()))

			following, err := registry.IsFollowing(ctx, "selene", "t-moon")
			req.NoError(err)
			req.True(following)
			followers, err := registry.FollowersOf(ctx, "t-moon")
			req.NoError(err)
			req.Equal([]string{"selene"}, followers)
		})
	}
}

func Test_Scan_Keeps_Unrelated_User_Fields(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	registry := NewScanRegistry(store, slog.Default())
	ctx := context.Background()

	req.NoError(store.Update(ctx, "users", "selene", map[string]any{
		"displayName": "Selene",
		"effects":     map[string]any{"glow": int64(99)},
	}))
	req.NoError(registry.Follow(ctx, "selene", moonTopic()))

	doc, err := store.Get(ctx, "users", "selene")
	req.NoError(err)
	req.Equal("Selene", doc.String("displayName"))
	_, hasEffects := doc.Data["effects"]
	req.True(hasEffects)
}

func Test_Index_Rebuild_Repairs_Drift(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	registry := NewIndexRegistry(store, slog.Default())
	ctx := context.Background()

	req.NoError(registry.Follow(ctx, "selene", moonTopic()))
	// Simulate index drift: someone nuked the index document.
	req.NoError(store.Delete(ctx, "topic_followers", "t-moon"))

	followers, err := registry.FollowersOf(ctx, "t-moon")
	req.NoError(err)
	req.Empty(followers)

	req.NoError(registry.Rebuild(ctx, "t-moon"))
	followers, err = registry.FollowersOf(ctx, "t-moon")
	req.NoError(err)
	req.Equal([]string{"selene"}, followers)
}
