package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxHistory is the cap on stored messages per conversation. Enforcement is
// best effort: a write may transiently push a conversation over the cap
// until the next trim pass catches up.
const MaxHistory = 20

// Message is one chat entry. Immutable once created except for the text
// (edit) and the read flag. EffectSnapshot freezes which status effects
// were active on the sender at send time, so later changes to the sender's
// profile never rewrite history.
type Message struct {
	ID             uuid.UUID
	ConversationID string
	From           string
	To             string
	Text           string
	CreatedAt      time.Time
	Read           bool
	EffectSnapshot []Effect
}

// ConversationID derives the deterministic key for a direct conversation:
// the sorted participant ids joined by "_". Both ends compute the same key
// without coordination.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// MessageFromData rebuilds a Message from a raw document payload.
func MessageFromData(conversationID, id string, data map[string]any) Message {
	m := Message{
		ConversationID: conversationID,
		From:           asString(data["from"]),
		To:             asString(data["to"]),
		Text:           asString(data["text"]),
		CreatedAt:      asMillis(data["created"]),
	}
	if parsed, err := uuid.Parse(id); err == nil {
		m.ID = parsed
	}
	if read, ok := data["read"].(bool); ok {
		m.Read = read
	}
	if raw, ok := data["effects"].([]any); ok {
		for _, e := range raw {
			if s, ok := e.(string); ok {
				m.EffectSnapshot = append(m.EffectSnapshot, Effect(s))
			}
		}
	}
	return m
}

// Data renders the message to its stored shape.
func (m Message) Data() map[string]any {
	effects := make([]any, 0, len(m.EffectSnapshot))
	for _, e := range m.EffectSnapshot {
		effects = append(effects, string(e))
	}
	return map[string]any{
		"from":    m.From,
		"to":      m.To,
		"text":    m.Text,
		"created": m.CreatedAt.UnixMilli(),
		"read":    m.Read,
		"effects": effects,
	}
}
