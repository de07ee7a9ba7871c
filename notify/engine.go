// Package notify turns domain events into per-recipient notification
// records. Fan-out is a loop of independent best-effort writes: one
// recipient's failure never aborts the rest, and re-processing the same
// event lands on the same record ids instead of duplicating alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"moonhall/contract"
	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/domain/event"
	"moonhall/errors"
)

// FeedLimit caps how many notifications the feed projection reads back.
const FeedLimit = 50

type Engine struct {
	store    docstore.Store
	registry contract.FollowerRegistry
	log      *slog.Logger
}

func NewEngine(store docstore.Store, registry contract.FollowerRegistry, log *slog.Logger) *Engine {
	return &Engine{store: store, registry: registry, log: log}
}

// Consume implements contract.EventSink. It resolves the recipient set,
// then writes one unread notification per recipient.
func (e *Engine) Consume(ctx context.Context, evt event.DomainEvent) error {
	recipients, err := e.recipients(ctx, evt)
	if err != nil {
		return err
	}
	for _, recipient := range recipients {
		n := build(recipient, evt)
		// Deterministic id: a retried delivery of the same event
		// overwrites its own record instead of ringing twice.
		if err := e.store.Update(ctx, "notifications", n.ID, n.Data()); err != nil {
			e.log.Warn("Notification not delivered", "recipient", recipient, "kind", evt.Kind(), "error", err)
		}
	}
	return nil
}

// recipients computes who gets the alert. Thread events go to the topic's
// followers minus the actor; direct events go to their explicit target.
// The actor is excluded in both shapes: nobody is told about their own
// action.
func (e *Engine) recipients(ctx context.Context, evt event.DomainEvent) ([]string, error) {
	switch evt := evt.(type) {
	case event.DirectEvent:
		if evt.Target() == "" || evt.Target() == evt.Actor() {
			return nil, nil
		}
		return []string{evt.Target()}, nil
	case event.ReplyPosted:
		return e.followersExceptActor(ctx, evt.TopicID, evt.ActorID)
	case event.TopicCreated:
		return e.followersExceptActor(ctx, evt.TopicID, evt.ActorID)
	}
	return nil, fmt.Errorf("%T: %w", evt, errors.ErrUnknownEvent)
}

func (e *Engine) followersExceptActor(ctx context.Context, topicID, actorID string) ([]string, error) {
	followers, err := e.registry.FollowersOf(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return lo.Without(followers, actorID), nil
}

// build renders the stored notification for one recipient. The subject is
// the grouping anchor at presentation time: topic id for thread kinds,
// counterpart id for direct kinds.
func build(recipient string, evt event.DomainEvent) domain.Notification {
	n := domain.Notification{
		Recipient: recipient,
		Kind:      evt.Kind(),
		CreatedAt: evt.At(),
	}
	switch evt := evt.(type) {
	case event.ReplyPosted:
		n.Actor = evt.ActorName
		n.Subject = evt.TopicID
		n.Title = evt.TopicTitle
	case event.TopicCreated:
		n.Actor = evt.ActorName
		n.Subject = evt.TopicID
		n.Title = evt.TopicTitle
	case event.GiftSent:
		n.Actor = evt.ActorName
		n.Subject = evt.ActorID
		n.Title = evt.Item
		n.Disguised = evt.Disguised
	case event.ProfileLiked:
		n.Actor = evt.ActorName
		n.Subject = evt.ActorID
	case event.DirectMessageSent:
		n.Actor = evt.ActorName
		n.Subject = evt.ActorID
		n.Title = evt.Excerpt
	}
	n.ID = notificationID(n)
	return n
}

func notificationID(n domain.Notification) string {
	seed := fmt.Sprintf("%s|%s|%s|%d", n.Recipient, n.Kind, n.Subject, n.CreatedAt.UnixMilli())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// Feed returns the recipient's most recent notifications, newest first.
func (e *Engine) Feed(ctx context.Context, userID string) ([]domain.Notification, error) {
	docs, err := e.store.Query(ctx, "notifications", func(doc docstore.Document) bool {
		return doc.String("to") == userID
	}, &docstore.OrderBy{Field: "created", Desc: true}, FeedLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(docs, func(doc docstore.Document, _ int) domain.Notification {
		return domain.NotificationFromData(doc.ID, doc.Data)
	}), nil
}

// Unread counts the recipient's unread notifications.
func (e *Engine) Unread(ctx context.Context, userID string) (int, error) {
	notifications, err := e.Feed(ctx, userID)
	if err != nil {
		return 0, err
	}
	return lo.CountBy(notifications, func(n domain.Notification) bool { return !n.Read }), nil
}

// MarkAllRead flags every unread notification of the recipient. One
// logical operation for the caller, N independent idempotent updates
// underneath: a partial failure leaves some alerts unread and the whole
// call is safe to retry.
func (e *Engine) MarkAllRead(ctx context.Context, userID string) error {
	docs, err := e.store.Query(ctx, "notifications", func(doc docstore.Document) bool {
		return doc.String("to") == userID && !doc.Bool("read")
	}, nil, 0)
	if err != nil {
		return err
	}
	failed := 0
	for _, doc := range docs {
		if err := e.store.Update(ctx, "notifications", doc.ID, map[string]any{"read": true}); err != nil {
			e.log.Warn("Read flag not persisted", "notification", doc.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notifications still unread", failed, len(docs))
	}
	return nil
}

// Dismiss deletes one notification outright.
func (e *Engine) Dismiss(ctx context.Context, notificationID string) error {
	return e.store.Delete(ctx, "notifications", notificationID)
}

var _ contract.EventSink = (*Engine)(nil)
