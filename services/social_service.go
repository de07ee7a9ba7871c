package services

import (
	"context"
	"log/slog"
	"time"

	"moonhall/domain"
	"moonhall/domain/event"
	"moonhall/presence"
)

type ISocialService interface {
	SendGift(ctx context.Context, cmd SendGiftCommand) error
	LikeProfile(ctx context.Context, cmd LikeProfileCommand) error
	OnlineRoster(ctx context.Context) ([]domain.User, error)
}

type SendGiftCommand struct {
	FromID    string `validate:"required"`
	FromName  string
	ToID      string `validate:"required"`
	Item      string `validate:"required"`
	Disguised bool
}

type LikeProfileCommand struct {
	FromID   string `validate:"required"`
	FromName string
	ToID     string `validate:"required"`
}

type SocialService struct {
	log        *slog.Logger
	tracker    *presence.Tracker
	dispatcher Dispatcher
	now        func() time.Time
}

func NewSocialService(log *slog.Logger, tracker *presence.Tracker, dispatcher Dispatcher) *SocialService {
	return &SocialService{log: log, tracker: tracker, dispatcher: dispatcher, now: time.Now}
}

// SendGift announces the gift to its recipient. A disguised gift keeps the
// sender's name out of the notification the recipient will see.
func (s *SocialService) SendGift(ctx context.Context, cmd SendGiftCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	s.dispatcher.Dispatch(event.GiftSent{
		ActorID:   cmd.FromID,
		ActorName: cmd.FromName,
		TargetID:  cmd.ToID,
		Item:      cmd.Item,
		Disguised: cmd.Disguised,
		CreatedAt: s.now(),
	})
	return nil
}

func (s *SocialService) LikeProfile(ctx context.Context, cmd LikeProfileCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	s.dispatcher.Dispatch(event.ProfileLiked{
		ActorID:   cmd.FromID,
		ActorName: cmd.FromName,
		TargetID:  cmd.ToID,
		CreatedAt: s.now(),
	})
	return nil
}

// OnlineRoster lists everyone recently active, minus anyone hiding behind
// an invisibility effect.
func (s *SocialService) OnlineRoster(ctx context.Context) ([]domain.User, error) {
	return s.tracker.Roster(ctx, s.now())
}
