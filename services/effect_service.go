package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/effects"
	"moonhall/errors"
)

type IEffectService interface {
	Drink(ctx context.Context, cmd DrinkPotionCommand) error
	ActiveEffects(ctx context.Context, userID string) ([]domain.Effect, error)
}

type DrinkPotionCommand struct {
	UserID string        `validate:"required"`
	Effect domain.Effect `validate:"required"`
}

type EffectService struct {
	log   *slog.Logger
	store docstore.Store
	now   func() time.Time
}

func NewEffectService(log *slog.Logger, store docstore.Store) *EffectService {
	return &EffectService{log: log, store: store, now: time.Now}
}

// Drink stamps a fresh deadline for the potion's effect on the drinker.
// Drinking again always restarts the clock, it never stacks.
func (s *EffectService) Drink(ctx context.Context, cmd DrinkPotionCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return err
	}
	patch, err := effects.Apply(cmd.Effect, s.now())
	if err != nil {
		return err
	}
	s.log.Info("Potion drunk", "user", cmd.UserID, "effect", cmd.Effect)
	return s.store.Update(ctx, "users", cmd.UserID, patch)
}

// ActiveEffects reads the user's live effects. Expired deadlines are simply
// filtered out; nothing is written back.
func (s *EffectService) ActiveEffects(ctx context.Context, userID string) ([]domain.Effect, error) {
	doc, err := s.store.Get(ctx, "users", userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return effects.Active(domain.UserFromData(userID, doc.Data), s.now()), nil
}
