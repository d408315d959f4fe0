package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository is the durable, process-wide ordered log of
// notifications. Records are append-only; is_read is the only mutable
// column and only ever flips false -> true.
type NotificationRepository interface {
	Append(ctx context.Context, n *model.Notification) error
	List(ctx context.Context) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Append(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := GetDB(ctx, r.db).
		Order("timestamp DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	db := GetDB(ctx, r.db)
	var n model.Notification
	if err := db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if n.IsRead {
		return nil
	}
	return db.Model(&n).Update("is_read", true).Error
}

// MarkAllRead flips every currently unread notification in one conditional
// UPDATE and reports how many rows changed. Notifications appended after the
// statement takes its snapshot stay unread, and a second sweep with no
// intervening append affects zero rows.
func (r *notificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
