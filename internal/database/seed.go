package database

import (
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seed populates demo fixtures for local development. It is an explicit
// bootstrap step invoked once at startup when SEED_DEMO_DATA is set; read
// paths never write fixture data. An already-populated store is left alone.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.ApprovalRequest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	groupID := uuid.NewString()

	requests := []model.ApprovalRequest{
		{
			ID:            uuid.NewString(),
			Type:          model.ApprovalTypeMembership,
			RequesterID:   uuid.NewString(),
			RequesterName: "Sarah Chen",
			GroupID:       groupID,
			GroupName:     "Community Garden",
			Description:   "Request to join as a contributing member",
			Status:        model.StatusPending,
			CreatedAt:     now.Add(-48 * time.Hour),
		},
		{
			ID:            uuid.NewString(),
			Type:          model.ApprovalTypeEvent,
			RequesterID:   uuid.NewString(),
			RequesterName: "Marcus Webb",
			GroupID:       groupID,
			GroupName:     "Community Garden",
			Description:   "Spring planting workshop on the main lawn",
			Status:        model.StatusPending,
			CreatedAt:     now.Add(-24 * time.Hour),
		},
	}
	if err := db.Create(&requests).Error; err != nil {
		return err
	}

	notifications := []model.Notification{
		{
			ID:        uuid.NewString(),
			Title:     "New approval request",
			Message:   "Sarah Chen submitted a membership request in Community Garden",
			Type:      model.NotificationTypeGroup,
			Priority:  model.PriorityMedium,
			Timestamp: now.Add(-48 * time.Hour),
			GroupName: "Community Garden",
		},
		{
			ID:        uuid.NewString(),
			Title:     "New approval request",
			Message:   "Marcus Webb submitted an event request in Community Garden",
			Type:      model.NotificationTypeGroup,
			Priority:  model.PriorityMedium,
			Timestamp: now.Add(-24 * time.Hour),
			GroupName: "Community Garden",
		},
	}
	return db.Create(&notifications).Error
}
