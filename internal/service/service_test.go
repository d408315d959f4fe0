package service

import (
	"testing"

	"backend/internal/event"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	bus           *event.Bus
	approvals     ApprovalService
	notifications NotificationService
}

// newTestEnv wires the full service stack over an in-memory SQLite database.
// A single connection keeps the shared :memory: database alive and
// serializes concurrent writers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.ApprovalRequest{},
		&model.Notification{},
		&model.AuditLog{},
	))

	bus := event.NewBus()
	notificationService := NewNotificationService(repository.NewNotificationRepository(db), bus)
	approvalService := NewApprovalService(
		repository.NewApprovalRepository(db),
		notificationService,
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		bus,
	)

	return &testEnv{
		db:            db,
		bus:           bus,
		approvals:     approvalService,
		notifications: notificationService,
	}
}

func membershipRequest(name string) CreateApprovalDTO {
	return CreateApprovalDTO{
		Type:          "membership",
		RequesterID:   "user-" + name,
		RequesterName: name,
		GroupName:     "Team G",
		Description:   "join request",
	}
}
