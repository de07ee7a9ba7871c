package services

import (
	"context"
	"log/slog"
	"time"

	"moonhall/contract"
	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/domain/event"
	"moonhall/follow"
)

type IForumService interface {
	CreateTopic(ctx context.Context, cmd CreateTopicCommand) (string, error)
	Reply(ctx context.Context, cmd ReplyCommand) (string, error)
	FollowTopic(ctx context.Context, userID string, forum, topicID, title string) error
	UnfollowTopic(ctx context.Context, userID, topicID string) error
}

type CreateTopicCommand struct {
	Forum      string `validate:"required"`
	Title      string `validate:"required"`
	AuthorID   string `validate:"required"`
	AuthorName string
	Content    string `validate:"required"`
}

type ReplyCommand struct {
	Forum      string `validate:"required"`
	TopicID    string `validate:"required"`
	TopicTitle string
	AuthorID   string `validate:"required"`
	AuthorName string
	Content    string `validate:"required"`
}

type ForumService struct {
	log        *slog.Logger
	store      docstore.Store
	registry   contract.FollowerRegistry
	dispatcher Dispatcher
	now        func() time.Time
}

func NewForumService(log *slog.Logger, store docstore.Store, registry contract.FollowerRegistry, dispatcher Dispatcher) *ForumService {
	return &ForumService{
		log:        log,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CreateTopic opens a thread with its first post. The author starts
// following the new thread before the creation event goes out, so the
// follower set the fan-out reads already excludes nobody by accident.
func (s *ForumService) CreateTopic(ctx context.Context, cmd CreateTopicCommand) (string, error) {
	if err := validate.Struct(cmd); err != nil {
		return "", err
	}
	now := s.now()

	topicID, err := s.store.Create(ctx, domain.TopicsCollection(cmd.Forum), map[string]any{
		"title":   cmd.Title,
		"uid":     cmd.AuthorID,
		"author":  cmd.AuthorName,
		"created": now.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	if _, err := s.store.Create(ctx, domain.PostsCollection(cmd.Forum, topicID), postData(cmd.AuthorID, cmd.AuthorName, cmd.Content, now)); err != nil {
		return "", err
	}

	if err := s.autoFollow(ctx, cmd.AuthorID, cmd.Forum, topicID, cmd.Title, now); err != nil {
		return "", err
	}
	s.dispatcher.Dispatch(event.TopicCreated{
		Forum:      cmd.Forum,
		TopicID:    topicID,
		TopicTitle: cmd.Title,
		ActorID:    cmd.AuthorID,
		ActorName:  cmd.AuthorName,
		CreatedAt:  now,
	})
	return topicID, nil
}

// Reply appends a post and follows the thread for its author first; only
// then is the reply announced, so the author never gets told about their
// own post through the follow they just gained.
func (s *ForumService) Reply(ctx context.Context, cmd ReplyCommand) (string, error) {
	if err := validate.Struct(cmd); err != nil {
		return "", err
	}
	now := s.now()

	postID, err := s.store.Create(ctx, domain.PostsCollection(cmd.Forum, cmd.TopicID), postData(cmd.AuthorID, cmd.AuthorName, cmd.Content, now))
	if err != nil {
		return "", err
	}

	if err := s.autoFollow(ctx, cmd.AuthorID, cmd.Forum, cmd.TopicID, cmd.TopicTitle, now); err != nil {
		return "", err
	}
	s.dispatcher.Dispatch(event.ReplyPosted{
		Forum:      cmd.Forum,
		TopicID:    cmd.TopicID,
		TopicTitle: cmd.TopicTitle,
		PostID:     postID,
		ActorID:    cmd.AuthorID,
		ActorName:  cmd.AuthorName,
		CreatedAt:  now,
	})
	return postID, nil
}

func (s *ForumService) FollowTopic(ctx context.Context, userID string, forum, topicID, title string) error {
	return s.registry.Follow(ctx, userID, domain.FollowedTopic{
		TopicID:    topicID,
		Title:      title,
		Forum:      forum,
		FollowedAt: s.now(),
	})
}

func (s *ForumService) UnfollowTopic(ctx context.Context, userID, topicID string) error {
	return s.registry.Unfollow(ctx, userID, topicID)
}

func (s *ForumService) autoFollow(ctx context.Context, userID, forum, topicID, title string, now time.Time) error {
	return follow.AutoFollow(ctx, s.registry, userID, domain.FollowedTopic{
		TopicID:    topicID,
		Title:      title,
		Forum:      forum,
		FollowedAt: now,
	})
}

func postData(authorID, authorName, content string, now time.Time) map[string]any {
	return map[string]any{
		"uid":     authorID,
		"author":  authorName,
		"content": content,
		"created": now.UnixMilli(),
	}
}
