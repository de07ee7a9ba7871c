package services

import (
	"context"
	"log/slog"

	"moonhall/domain"
	"moonhall/notify"
	"moonhall/projection"
)

type INotificationService interface {
	Feed(ctx context.Context, userID string) ([]domain.Notification, error)
	Grouped(ctx context.Context, userID string) ([]projection.Group, error)
	Unread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
	Dismiss(ctx context.Context, notificationID string) error
}

type NotificationService struct {
	log    *slog.Logger
	engine *notify.Engine
}

func NewNotificationService(log *slog.Logger, engine *notify.Engine) *NotificationService {
	return &NotificationService{log: log, engine: engine}
}

func (s *NotificationService) Feed(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.engine.Feed(ctx, userID)
}

// Grouped collapses the feed by kind and subject at read time. Stored
// notifications stay flat; only the view is grouped.
func (s *NotificationService) Grouped(ctx context.Context, userID string) ([]projection.Group, error) {
	feed, err := s.engine.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	return projection.Groups(feed), nil
}

func (s *NotificationService) Unread(ctx context.Context, userID string) (int, error) {
	return s.engine.Unread(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.engine.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Dismiss(ctx context.Context, notificationID string) error {
	return s.engine.Dismiss(ctx, notificationID)
}
