package service

import (
	"context"
	"time"

	"backend/internal/event"
	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService appends to the process-wide notification log and
// signals observers over the event bus.
type NotificationService interface {
	Append(ctx context.Context, n *model.Notification) (*model.Notification, error)
	List(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	bus  *event.Bus
	log  zerolog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, bus *event.Bus) NotificationService {
	return &notificationService{
		repo: repo,
		bus:  bus,
		log:  logging.Component("notification-service"),
	}
}

// Append assigns id/timestamp if absent, persists the notification and
// publishes notifications-changed once the write is durable. When called
// inside an enclosing transaction the publication is deferred to commit.
func (s *notificationService) Append(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}
	if !n.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: "must be one of system, transaction, group, event, security"}
	}
	if !n.Priority.Valid() {
		return nil, &ValidationError{Field: "priority", Reason: "must be one of low, medium, high, urgent"}
	}
	if n.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if err := s.repo.Append(ctx, n); err != nil {
		return nil, &StorageError{Op: "append notification", Err: err}
	}

	repository.AfterCommit(ctx, func() {
		s.bus.Publish(event.TopicNotificationsChanged)
	})

	s.log.Debug().Str("id", n.ID).Str("type", string(n.Type)).Msg("notification appended")
	return n, nil
}

func (s *notificationService) List(ctx context.Context) ([]model.Notification, error) {
	notifications, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list notifications", Err: err}
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return 0, &StorageError{Op: "count unread notifications", Err: err}
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	err := s.repo.MarkRead(ctx, id)
	if err == repository.ErrNotFound {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return &StorageError{Op: "mark notification read", Err: err}
	}

	repository.AfterCommit(ctx, func() {
		s.bus.Publish(event.TopicNotificationsChanged)
	})
	return nil
}

// MarkAllRead sweeps every currently unread notification. Idempotent: a
// second call with no intervening Append changes nothing and publishes
// nothing.
func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, &StorageError{Op: "mark all notifications read", Err: err}
	}

	if count > 0 {
		repository.AfterCommit(ctx, func() {
			s.bus.Publish(event.TopicNotificationsChanged)
		})
		s.log.Debug().Int64("count", count).Msg("notifications marked read")
	}
	return count, nil
}
