package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/domain/event"
)

func pollerStore(t *testing.T) *docstore.BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return docstore.NewBadgerStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func seedFollower(t *testing.T, store docstore.Store, userID, forum, topicID, title string) {
	t.Helper()
	err := store.Update(context.Background(), "users", userID, map[string]any{
		"displayName": userID,
		"followedTopics": []any{
			map[string]any{"id": topicID, "title": title, "forum": forum, "followedAt": int64(1000)},
		},
	})
	require.NoError(t, err)
}

func seedPost(t *testing.T, store docstore.Store, forum, topicID, postID, authorID string, at time.Time) {
	t.Helper()
	err := store.Update(context.Background(), domain.PostsCollection(forum, topicID), postID, map[string]any{
		"uid":     authorID,
		"author":  authorID,
		"content": "fresh gossip",
		"created": at.UnixMilli(),
	})
	require.NoError(t, err)
}

func drain(events chan event.DomainEvent) []event.DomainEvent {
	var out []event.DomainEvent
	for {
		select {
		case evt := <-events:
			out = append(out, evt)
		default:
			return out
		}
	}
}

func Test_Poller_Reports_Posts_Newer_Than_Watermark_Exactly_Once(t *testing.T) {
	req := require.New(t)
	store := pollerStore(t)
	events := make(chan event.DomainEvent, 8)
	t0 := time.Now()

	seedFollower(t, store, "luna", "alchemy", "moon-dust", "Moon dust recipes")
	seedPost(t, store, "alchemy", "moon-dust", "p1", "severin", t0.Add(time.Minute))

	poller := NewWatermarkPoller(logs.GetLoggerFromLevel(slog.LevelDebug), store, events, "luna")
	poller.lastPollAt = t0
	poller.now = func() time.Time { return t0.Add(2 * time.Minute) }

	req.NoError(poller.Sweep(context.Background()))
	got := drain(events)
	req.Len(got, 1)
	reply, ok := got[0].(event.ReplyPosted)
	req.True(ok)
	req.Equal("moon-dust", reply.TopicID)
	req.Equal("severin", reply.ActorID)

	// The watermark advanced to the first cycle's start, nothing new since
	req.NoError(poller.Sweep(context.Background()))
	req.Empty(drain(events))
}

func Test_Poller_Skips_Activity_Older_Than_Watermark(t *testing.T) {
	req := require.New(t)
	store := pollerStore(t)
	events := make(chan event.DomainEvent, 8)
	t0 := time.Now()

	seedFollower(t, store, "luna", "alchemy", "moon-dust", "Moon dust recipes")
	seedPost(t, store, "alchemy", "moon-dust", "p1", "severin", t0.Add(-time.Hour))

	poller := NewWatermarkPoller(logs.GetLoggerFromLevel(slog.LevelDebug), store, events, "luna")
	poller.lastPollAt = t0
	poller.now = func() time.Time { return t0.Add(time.Minute) }

	req.NoError(poller.Sweep(context.Background()))
	req.Empty(drain(events))
}

func Test_Poller_Ignores_The_Users_Own_Posts(t *testing.T) {
	req := require.New(t)
	store := pollerStore(t)
	events := make(chan event.DomainEvent, 8)
	t0 := time.Now()

	seedFollower(t, store, "luna", "alchemy", "moon-dust", "Moon dust recipes")
	seedPost(t, store, "alchemy", "moon-dust", "p1", "luna", t0.Add(time.Minute))

	poller := NewWatermarkPoller(logs.GetLoggerFromLevel(slog.LevelDebug), store, events, "luna")
	poller.lastPollAt = t0
	poller.now = func() time.Time { return t0.Add(2 * time.Minute) }

	req.NoError(poller.Sweep(context.Background()))
	req.Empty(drain(events))
}

func Test_Poller_Only_Surfaces_The_Newest_Post_Per_Topic(t *testing.T) {
	req := require.New(t)
	store := pollerStore(t)
	events := make(chan event.DomainEvent, 8)
	t0 := time.Now()

	seedFollower(t, store, "luna", "alchemy", "moon-dust", "Moon dust recipes")
	seedPost(t, store, "alchemy", "moon-dust", "p1", "severin", t0.Add(time.Minute))
	seedPost(t, store, "alchemy", "moon-dust", "p2", "ondine", t0.Add(2*time.Minute))

	poller := NewWatermarkPoller(logs.GetLoggerFromLevel(slog.LevelDebug), store, events, "luna")
	poller.lastPollAt = t0
	poller.now = func() time.Time { return t0.Add(3 * time.Minute) }

	req.NoError(poller.Sweep(context.Background()))
	got := drain(events)
	req.Len(got, 1)
	req.Equal("p2", got[0].(event.ReplyPosted).PostID)
}
