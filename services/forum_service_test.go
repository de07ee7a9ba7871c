package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"moonhall/domain"
	"moonhall/domain/event"
	"moonhall/follow"
	"moonhall/notify"
)

func newForumService(t *testing.T) (*ForumService, *notify.Engine) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := serviceStore(t)
	registry := follow.NewScanRegistry(store, log)
	engine := notify.NewEngine(store, registry, log)
	return NewForumService(log, store, registry, &syncDispatcher{sink: engine}), engine
}

func Test_Reply_Auto_Follows_Before_Announcing(t *testing.T) {
	req := require.New(t)
	svc, engine := newForumService(t)
	ctx := context.Background()

	topicID, err := svc.CreateTopic(ctx, CreateTopicCommand{
		Forum: "alchemy", Title: "Moon dust recipes", AuthorID: "luna", AuthorName: "Luna", Content: "share yours",
	})
	req.NoError(err)

	following, err := svc.registry.IsFollowing(ctx, "luna", topicID)
	req.NoError(err)
	req.True(following)

	_, err = svc.Reply(ctx, ReplyCommand{
		Forum: "alchemy", TopicID: topicID, TopicTitle: "Moon dust recipes",
		AuthorID: "severin", AuthorName: "Severin", Content: "crush it under a full moon",
	})
	req.NoError(err)

	// The replier follows too, yet never hears about their own post
	following, err = svc.registry.IsFollowing(ctx, "severin", topicID)
	req.NoError(err)
	req.True(following)

	unread, err := engine.Unread(ctx, "severin")
	req.NoError(err)
	req.Zero(unread)

	unread, err = engine.Unread(ctx, "luna")
	req.NoError(err)
	req.Equal(1, unread)
}

func Test_Reply_Notifies_Every_Follower_Except_The_Author(t *testing.T) {
	req := require.New(t)
	svc, engine := newForumService(t)
	ctx := context.Background()

	topicID, err := svc.CreateTopic(ctx, CreateTopicCommand{
		Forum: "alchemy", Title: "Moon dust recipes", AuthorID: "luna", AuthorName: "Luna", Content: "share yours",
	})
	req.NoError(err)
	req.NoError(svc.FollowTopic(ctx, "ondine", "alchemy", topicID, "Moon dust recipes"))

	_, err = svc.Reply(ctx, ReplyCommand{
		Forum: "alchemy", TopicID: topicID, TopicTitle: "Moon dust recipes",
		AuthorID: "luna", AuthorName: "Luna", Content: "mine uses silver thistle",
	})
	req.NoError(err)

	feed, err := engine.Feed(ctx, "ondine")
	req.NoError(err)
	req.Len(feed, 1)
	req.Equal(domain.KindReply, feed[0].Kind)
	req.Equal(topicID, feed[0].Subject)

	unread, err := engine.Unread(ctx, "luna")
	req.NoError(err)
	req.Zero(unread)
}

func Test_CreateTopic_Emits_A_Creation_Event(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := serviceStore(t)
	dispatcher := &syncDispatcher{}
	svc := NewForumService(log, store, follow.NewScanRegistry(store, log), dispatcher)

	topicID, err := svc.CreateTopic(context.Background(), CreateTopicCommand{
		Forum: "alchemy", Title: "Moon dust recipes", AuthorID: "luna", AuthorName: "Luna", Content: "share yours",
	})
	req.NoError(err)

	req.Len(dispatcher.seen, 1)
	created, ok := dispatcher.seen[0].(event.TopicCreated)
	req.True(ok)
	req.Equal(topicID, created.TopicID)
	req.Equal("luna", created.ActorID)
}
