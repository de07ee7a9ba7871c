// Package event defines the domain events that drive notification fan-out.
// Push subscriptions and watermark polls both emit these same shapes, so
// the fan-out engine never knows which kind of source observed the fact.
package event

import (
	"time"

	"moonhall/domain"
)

// DomainEvent is one qualifying fact observed somewhere on the platform.
type DomainEvent interface {
	Kind() domain.NotificationKind
	Actor() string // acting user id, excluded from the recipient set
	At() time.Time
}

// DirectEvent is an event addressed to one explicit recipient instead of a
// follower set.
type DirectEvent interface {
	DomainEvent
	Target() string
}

// ReplyPosted fires when a post is added to an existing topic.
type ReplyPosted struct {
	Forum      string
	TopicID    string
	TopicTitle string
	PostID     string
	ActorID    string
	ActorName  string
	CreatedAt  time.Time
}

func (e ReplyPosted) Kind() domain.NotificationKind { return domain.KindReply }
func (e ReplyPosted) Actor() string                 { return e.ActorID }
func (e ReplyPosted) At() time.Time                 { return e.CreatedAt }

// TopicCreated fires when a new thread is opened.
type TopicCreated struct {
	Forum      string
	TopicID    string
	TopicTitle string
	ActorID    string
	ActorName  string
	CreatedAt  time.Time
}

func (e TopicCreated) Kind() domain.NotificationKind { return domain.KindNewTopic }
func (e TopicCreated) Actor() string                 { return e.ActorID }
func (e TopicCreated) At() time.Time                 { return e.CreatedAt }

// GiftSent fires when a user gifts an inventory item to another user.
// The item transfer itself happens outside this core; only the alert is ours.
type GiftSent struct {
	ActorID   string
	ActorName string
	TargetID  string
	Item      string
	Disguised bool
	CreatedAt time.Time
}

func (e GiftSent) Kind() domain.NotificationKind { return domain.KindGift }
func (e GiftSent) Actor() string                 { return e.ActorID }
func (e GiftSent) At() time.Time                 { return e.CreatedAt }
func (e GiftSent) Target() string                { return e.TargetID }

// ProfileLiked fires when a user likes another user's profile.
type ProfileLiked struct {
	ActorID   string
	ActorName string
	TargetID  string
	CreatedAt time.Time
}

func (e ProfileLiked) Kind() domain.NotificationKind { return domain.KindLike }
func (e ProfileLiked) Actor() string                 { return e.ActorID }
func (e ProfileLiked) At() time.Time                 { return e.CreatedAt }
func (e ProfileLiked) Target() string                { return e.TargetID }

// DirectMessageSent fires when a private message lands in a conversation.
type DirectMessageSent struct {
	ConversationID string
	MessageID      string
	ActorID        string
	ActorName      string
	TargetID       string
	Excerpt        string
	CreatedAt      time.Time
}

func (e DirectMessageSent) Kind() domain.NotificationKind { return domain.KindDirectMessage }
func (e DirectMessageSent) Actor() string                 { return e.ActorID }
func (e DirectMessageSent) At() time.Time                 { return e.CreatedAt }
func (e DirectMessageSent) Target() string                { return e.TargetID }
