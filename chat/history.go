// Package chat maintains the rolling per-conversation message window.
// Appends are acknowledged to the sender immediately; trimming back down
// to the cap happens afterwards, off the send path, and is allowed to lag.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"moonhall/docstore"
	"moonhall/domain"
)

type History struct {
	store docstore.Store
	log   *slog.Logger
	max   int
}

func NewHistory(store docstore.Store, log *slog.Logger, max int) *History {
	if max <= 0 {
		max = domain.MaxHistory
	}
	return &History{store: store, log: log, max: max}
}

// Append stores a message under its own id and returns that id. It never
// waits for trimming: the sender's acknowledgment must not depend on how
// far over budget the conversation currently is.
func (h *History) Append(ctx context.Context, msg domain.Message) (string, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	id := msg.ID.String()
	err := h.store.Update(ctx, domain.MessagesCollection(msg.ConversationID), id, msg.Data())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Trim deletes the oldest messages until the conversation is back within
// the cap. Running it on an already compliant conversation changes
// nothing. A failed delete aborts the pass; the conversation self-heals on
// the trim that follows the next append.
func (h *History) Trim(ctx context.Context, conversationID string) error {
	collection := domain.MessagesCollection(conversationID)
	for {
		docs, err := h.store.Query(ctx, collection, nil, &docstore.OrderBy{Field: "created"}, 0)
		if err != nil {
			return err
		}
		if len(docs) <= h.max {
			return nil
		}
		for _, doc := range docs[:len(docs)-h.max] {
			if err := h.store.Delete(ctx, collection, doc.ID); err != nil {
				return err
			}
		}
	}
}

// Visible returns the most recent messages, oldest first for display. The
// window is computed at read time, so it holds even while a trim pass has
// not physically caught up yet.
func (h *History) Visible(ctx context.Context, conversationID string) ([]domain.Message, error) {
	docs, err := h.store.Query(ctx, domain.MessagesCollection(conversationID), nil,
		&docstore.OrderBy{Field: "created", Desc: true}, h.max)
	if err != nil {
		return nil, err
	}
	messages := lo.Map(docs, func(doc docstore.Document, _ int) domain.Message {
		return domain.MessageFromData(conversationID, doc.ID, doc.Data)
	})
	return lo.Reverse(messages), nil
}

// Edit replaces a message's text. Everything else about the record,
// including its effect snapshot, stays frozen.
func (h *History) Edit(ctx context.Context, conversationID, messageID, text string) error {
	return h.store.Update(ctx, domain.MessagesCollection(conversationID), messageID, map[string]any{
		"text": text,
	})
}

// MarkRead flags every message addressed to the reader as read. Each flag
// is an independent idempotent update, safe to repeat.
func (h *History) MarkRead(ctx context.Context, conversationID, readerID string) error {
	collection := domain.MessagesCollection(conversationID)
	docs, err := h.store.Query(ctx, collection, func(doc docstore.Document) bool {
		return doc.String("to") == readerID && !doc.Bool("read")
	}, nil, 0)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := h.store.Update(ctx, collection, doc.ID, map[string]any{"read": true}); err != nil {
			h.log.Warn("Read flag not persisted", "conversation", conversationID, "message", doc.ID, "error", err)
		}
	}
	return nil
}

// UnreadCount counts messages addressed to the reader and not yet read.
// The sender's own messages never show up in their badge.
func UnreadCount(messages []domain.Message, readerID string) int {
	return lo.CountBy(messages, func(m domain.Message) bool {
		return m.To == readerID && m.From != readerID && !m.Read
	})
}

// NewMessage assembles an outgoing message stamped at now.
func NewMessage(from, to, text string, snapshot []domain.Effect, now time.Time) domain.Message {
	return domain.Message{
		ID:             uuid.New(),
		ConversationID: domain.ConversationID(from, to),
		From:           from,
		To:             to,
		Text:           text,
		CreatedAt:      now,
		EffectSnapshot: snapshot,
	}
}
