// Package services exposes the command surface of the platform. Each service
// validates its commands, delegates to the domain packages, and emits the
// domain events that drive notification fan-out.
package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"moonhall/chat"
	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/domain/event"
	"moonhall/effects"
	"moonhall/errors"
)

// Dispatcher hands domain events to the session fan-out without blocking.
type Dispatcher interface {
	Dispatch(evt event.DomainEvent)
}

// TrimRequester queues a background history prune for a conversation.
type TrimRequester interface {
	RequestTrim(conversationID string)
}

var validate = validator.New()

type IChatService interface {
	SendMessage(ctx context.Context, cmd SendMessageCommand) (string, error)
	Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
	EditMessage(ctx context.Context, cmd EditMessageCommand) error
	MarkConversationRead(ctx context.Context, readerID, otherID string) error
}

type SendMessageCommand struct {
	FromID   string `validate:"required"`
	FromName string
	ToID     string `validate:"required"`
	Text     string `validate:"required"`
}

type EditMessageCommand struct {
	EditorID  string `validate:"required"`
	OtherID   string `validate:"required"`
	MessageID string `validate:"required"`
	Text      string `validate:"required"`
}

type ChatService struct {
	log        *slog.Logger
	store      docstore.Store
	history    *chat.History
	dispatcher Dispatcher
	trims      TrimRequester
	now        func() time.Time
}

func NewChatService(log *slog.Logger, store docstore.Store, history *chat.History, dispatcher Dispatcher, trims TrimRequester) *ChatService {
	return &ChatService{
		log:        log,
		store:      store,
		history:    history,
		dispatcher: dispatcher,
		trims:      trims,
		now:        time.Now,
	}
}

// SendMessage appends the message with the sender's current status effects
// frozen onto it, acknowledges, then queues the history prune and the
// recipient's notification off the hot path.
func (s *ChatService) SendMessage(ctx context.Context, cmd SendMessageCommand) (string, error) {
	if err := validate.Struct(cmd); err != nil {
		return "", err
	}
	if strings.TrimSpace(cmd.Text) == "" {
		return "", errors.ErrEmptyMessage
	}

	now := s.now()
	msg := chat.NewMessage(cmd.FromID, cmd.ToID, cmd.Text, s.senderEffects(ctx, cmd.FromID, now), now)
	id, err := s.history.Append(ctx, msg)
	if err != nil {
		return "", err
	}

	s.rememberConversation(ctx, msg.ConversationID, cmd.FromID, cmd.ToID)
	s.trims.RequestTrim(msg.ConversationID)
	s.dispatcher.Dispatch(event.DirectMessageSent{
		ConversationID: msg.ConversationID,
		MessageID:      id,
		ActorID:        cmd.FromID,
		ActorName:      cmd.FromName,
		TargetID:       cmd.ToID,
		Excerpt:        excerpt(cmd.Text),
		CreatedAt:      now,
	})
	return id, nil
}

func (s *ChatService) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	return s.history.Visible(ctx, domain.ConversationID(userA, userB))
}

func (s *ChatService) EditMessage(ctx context.Context, cmd EditMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	if strings.TrimSpace(cmd.Text) == "" {
		return errors.ErrEmptyMessage
	}
	return s.history.Edit(ctx, domain.ConversationID(cmd.EditorID, cmd.OtherID), cmd.MessageID, cmd.Text)
}

func (s *ChatService) MarkConversationRead(ctx context.Context, readerID, otherID string) error {
	return s.history.MarkRead(ctx, domain.ConversationID(readerID, otherID), readerID)
}

// rememberConversation adds the conversation to both participants' rosters
// so either side can list their chats without scanning message collections.
// Already-listed conversations are left alone; a failed write only costs the
// roster entry, never the message.
func (s *ChatService) rememberConversation(ctx context.Context, conversationID string, userIDs ...string) {
	for _, userID := range userIDs {
		var user domain.User
		doc, err := s.store.Get(ctx, "users", userID)
		switch {
		case err == nil:
			user = domain.UserFromData(userID, doc.Data)
		case !stderrors.Is(err, errors.ErrNotFound):
			s.log.Warn("Conversation roster skipped", "user", userID, "error", err)
			continue
		}
		if lo.Contains(user.Conversations, conversationID) {
			continue
		}
		roster := lo.ToAnySlice(append(user.Conversations, conversationID))
		if err := s.store.Update(ctx, "users", userID, map[string]any{"conversations": roster}); err != nil {
			s.log.Warn("Conversation roster not updated", "user", userID, "error", err)
		}
	}
}

// senderEffects freezes the sender's live effects at send time. A missing
// profile simply means no effects; the message still goes out.
func (s *ChatService) senderEffects(ctx context.Context, userID string, now time.Time) []domain.Effect {
	doc, err := s.store.Get(ctx, "users", userID)
	if err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			s.log.Warn("Effect snapshot unavailable", "user", userID, "error", err)
		}
		return nil
	}
	return effects.Snapshot(domain.UserFromData(userID, doc.Data), now)
}

const excerptLen = 80

func excerpt(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= excerptLen {
		return string(runes)
	}
	return string(runes[:excerptLen])
}
