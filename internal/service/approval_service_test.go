package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backend/internal/event"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReturnsPendingRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.ResolvedAt)
	assert.Nil(t, created.ResolvedByID)
	assert.Nil(t, created.ResolvedByName)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	input := membershipRequest("Alice")
	input.Type = "petition"

	_, err := env.approvals.Create(context.Background(), "g1", input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "type", validationErr.Field)

	// Rejected before any write: nothing persisted, nothing notified.
	requests, listErr := env.approvals.List(context.Background(), "g1")
	require.NoError(t, listErr)
	assert.Empty(t, requests)
}

func TestCreateRejectsEmptyDescription(t *testing.T) {
	env := newTestEnv(t)

	input := membershipRequest("Alice")
	input.Description = ""

	_, err := env.approvals.Create(context.Background(), "g1", input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "description", validationErr.Field)
}

func TestCreateNotifiesReviewersAndPublishes(t *testing.T) {
	env := newTestEnv(t)

	var topics []string
	env.bus.Subscribe(event.TopicApprovalsChanged, func(topic string) { topics = append(topics, topic) })
	env.bus.Subscribe(event.TopicNotificationsChanged, func(topic string) { topics = append(topics, topic) })

	_, err := env.approvals.Create(context.Background(), "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	assert.Contains(t, topics, event.TopicApprovalsChanged)
	assert.Contains(t, topics, event.TopicNotificationsChanged)

	notifications, err := env.notifications.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New approval request", notifications[0].Title)
	assert.Contains(t, notifications[0].Message, "Alice")
	assert.False(t, notifications[0].IsRead)
}

// Scenario: a membership request shows up in the group's pending view.
func TestListByStatusContainsNewRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	pending, err := env.approvals.ListByStatus(ctx, "g1", model.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Alice", pending[0].RequesterName)
	assert.Equal(t, model.ApprovalTypeMembership, pending[0].Type)
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.approvals.ListByStatus(context.Background(), "g1", "archived")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// Scenario: approval attributes the resolver and notifies the requester.
func TestResolveApprovesAndNotifiesRequester(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	resolved, err := env.approvals.Resolve(ctx, "g1", created.ID, ActionApprove,
		model.Resolver{ID: "admin-1", Name: "Admin"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedByName)
	assert.Equal(t, "Admin", *resolved.ResolvedByName)
	require.NotNil(t, resolved.ResolvedAt)

	notifications, err := env.notifications.List(ctx)
	require.NoError(t, err)

	var requesterNote *model.Notification
	for i := range notifications {
		if notifications[i].Title == "Request approved" {
			requesterNote = &notifications[i]
		}
	}
	require.NotNil(t, requesterNote, "requester-facing notification missing")
	assert.Equal(t, created.RequesterID, requesterNote.RecipientID)
	assert.Contains(t, requesterNote.Message, "approved")
}

// Scenario: a second resolution is a no-op failure, never an overwrite.
func TestResolveTwiceKeepsFirstOutcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	first, err := env.approvals.Resolve(ctx, "g1", created.ID, ActionApprove,
		model.Resolver{ID: "admin-1", Name: "Admin"})
	require.NoError(t, err)

	_, err = env.approvals.Resolve(ctx, "g1", created.ID, ActionReject,
		model.Resolver{ID: "admin-2", Name: "Other Admin"})

	var alreadyResolved *AlreadyResolvedError
	require.ErrorAs(t, err, &alreadyResolved)
	assert.Equal(t, model.StatusApproved, alreadyResolved.Status)

	got, err := env.approvals.Get(ctx, "g1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.WithinDuration(t, *first.ResolvedAt, *got.ResolvedAt, time.Second)
	assert.Equal(t, "admin-1", *got.ResolvedByID)
	assert.Equal(t, "Admin", *got.ResolvedByName)
}

func TestResolveConcurrentlyExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	actions := []ResolveAction{ActionApprove, ActionReject}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = env.approvals.Resolve(ctx, "g1", created.ID, actions[n],
				model.Resolver{ID: "admin-1", Name: "Admin"})
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, resolveErr := range errs {
		if resolveErr == nil {
			succeeded++
			continue
		}
		var alreadyResolved *AlreadyResolvedError
		require.ErrorAs(t, resolveErr, &alreadyResolved)
		conflicted++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	got, err := env.approvals.Get(ctx, "g1", created.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
}

func TestResolveRejectsUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)

	_, err = env.approvals.Resolve(ctx, "g1", created.ID, "defer",
		model.Resolver{ID: "admin-1", Name: "Admin"})

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	// The record is untouched.
	got, getErr := env.approvals.Get(ctx, "g1", created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestResolveUnknownIDReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.approvals.Resolve(context.Background(), "g1", "missing", ActionApprove,
		model.Resolver{ID: "admin-1", Name: "Admin"})

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolvePublishesOnlyOnSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)
	_, err = env.approvals.Resolve(ctx, "g1", created.ID, ActionApprove,
		model.Resolver{ID: "admin-1", Name: "Admin"})
	require.NoError(t, err)

	published := 0
	env.bus.Subscribe(event.TopicApprovalsChanged, func(string) { published++ })

	_, err = env.approvals.Resolve(ctx, "g1", created.ID, ActionReject,
		model.Resolver{ID: "admin-2", Name: "Other Admin"})
	require.Error(t, err)
	assert.Equal(t, 0, published, "failed resolve must not signal observers")
}

// Scenario: 3 creates and 1 resolve; newest first, one terminal, two pending.
func TestListAfterCreatesAndResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		created, err := env.approvals.Create(ctx, "g1", membershipRequest(name))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	_, err := env.approvals.Resolve(ctx, "g1", ids[1], ActionReject,
		model.Resolver{ID: "admin-1", Name: "Admin"})
	require.NoError(t, err)

	got, err := env.approvals.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Carol", got[0].RequesterName)
	assert.Equal(t, "Bob", got[1].RequesterName)
	assert.Equal(t, "Alice", got[2].RequesterName)

	terminal, pending := 0, 0
	for _, r := range got {
		if r.Status.Terminal() {
			terminal++
		} else {
			pending++
		}
	}
	assert.Equal(t, 1, terminal)
	assert.Equal(t, 2, pending)
}

func TestResolveWritesAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.approvals.Create(ctx, "g1", membershipRequest("Alice"))
	require.NoError(t, err)
	_, err = env.approvals.Resolve(ctx, "g1", created.ID, ActionApprove,
		model.Resolver{ID: "admin-1", Name: "Admin"})
	require.NoError(t, err)

	var entries []model.AuditLog
	require.NoError(t, env.db.Order("created_at").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionCreateApprovalRequest, entries[0].Action)
	assert.Equal(t, model.ActionApproveRequest, entries[1].Action)
	assert.Equal(t, created.ID, entries[1].EntityID)
	require.NotNil(t, entries[1].UserID)
	assert.Equal(t, "admin-1", *entries[1].UserID)
}
