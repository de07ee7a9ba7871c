package domain

import "time"

// NotificationKind is the closed set of events a user can be notified about.
type NotificationKind string

const (
	KindReply         NotificationKind = "reply"
	KindNewTopic      NotificationKind = "new-topic"
	KindGift          NotificationKind = "gift"
	KindLike          NotificationKind = "like"
	KindDirectMessage NotificationKind = "direct-message"
	KindGroupMessage  NotificationKind = "group-message"
)

// Notification is one alert addressed to one recipient. Immutable except
// for the Read flag. Created by the fan-out engine, marked read on
// acknowledgment, deleted only on explicit dismissal.
type Notification struct {
	ID        string
	Recipient string
	Kind      NotificationKind
	Actor     string // display name of whoever caused the alert
	Subject   string // topic id for forum kinds, counterpart id for direct kinds
	Title     string // human summary: topic title, item name, message excerpt
	Disguised bool   // gift only: the displayed item name hides the real one
	Read      bool
	CreatedAt time.Time
}

// NotificationFromData rebuilds a Notification from a raw document payload.
func NotificationFromData(id string, data map[string]any) Notification {
	n := Notification{
		ID:        id,
		Recipient: asString(data["to"]),
		Kind:      NotificationKind(asString(data["kind"])),
		Actor:     asString(data["actor"]),
		Subject:   asString(data["subject"]),
		Title:     asString(data["title"]),
		CreatedAt: asMillis(data["created"]),
	}
	if read, ok := data["read"].(bool); ok {
		n.Read = read
	}
	if d, ok := data["disguised"].(bool); ok {
		n.Disguised = d
	}
	return n
}

// Data renders the notification to its stored shape.
func (n Notification) Data() map[string]any {
	return map[string]any{
		"to":        n.Recipient,
		"kind":      string(n.Kind),
		"actor":     n.Actor,
		"subject":   n.Subject,
		"title":     n.Title,
		"disguised": n.Disguised,
		"read":      n.Read,
		"created":   n.CreatedAt.UnixMilli(),
	}
}
