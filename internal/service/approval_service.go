package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/event"
	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- DTOs ---

type CreateApprovalDTO struct {
	Type          string `json:"type" binding:"required,oneof=membership content event marketplace donation"`
	RequesterID   string `json:"requester_id" binding:"required"`
	RequesterName string `json:"requester_name" binding:"required"`
	GroupName     string `json:"group_name"`
	Description   string `json:"description" binding:"required"`
}

// ResolveAction is the requested transition out of pending.
type ResolveAction string

const (
	ActionApprove ResolveAction = "approve"
	ActionReject  ResolveAction = "reject"
)

// status maps the action to its terminal status. The state machine has
// exactly two legal transitions; everything else is rejected.
func (a ResolveAction) status() (model.ApprovalStatus, bool) {
	switch a {
	case ActionApprove:
		return model.StatusApproved, true
	case ActionReject:
		return model.StatusRejected, true
	}
	return "", false
}

// --- Interface ---

// ApprovalService orchestrates creation and resolution of approval requests.
// Resolution rides on the store's compare-and-swap: of two concurrent
// attempts exactly one succeeds, the other fails with AlreadyResolvedError.
type ApprovalService interface {
	Create(ctx context.Context, groupID string, input CreateApprovalDTO) (*model.ApprovalRequest, error)
	Get(ctx context.Context, groupID, id string) (*model.ApprovalRequest, error)
	List(ctx context.Context, groupID string) ([]model.ApprovalRequest, error)
	ListByStatus(ctx context.Context, groupID string, status model.ApprovalStatus) ([]model.ApprovalRequest, error)
	Resolve(ctx context.Context, groupID, id string, action ResolveAction, resolver model.Resolver) (*model.ApprovalRequest, error)
}

type approvalService struct {
	repo          repository.ApprovalRepository
	notifications NotificationService
	audits        repository.AuditRepository
	txManager     repository.TransactionManager
	bus           *event.Bus
	log           zerolog.Logger
}

func NewApprovalService(
	repo repository.ApprovalRepository,
	notifications NotificationService,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	bus *event.Bus,
) ApprovalService {
	return &approvalService{
		repo:          repo,
		notifications: notifications,
		audits:        audits,
		txManager:     txManager,
		bus:           bus,
		log:           logging.Component("approval-service"),
	}
}

// --- Implementation ---

// Create persists a fresh pending request and notifies reviewers. The
// record, the reviewer notification and the audit entry commit atomically;
// event publication happens strictly after commit.
func (s *approvalService) Create(ctx context.Context, groupID string, input CreateApprovalDTO) (*model.ApprovalRequest, error) {
	reqType := model.ApprovalType(input.Type)
	if !reqType.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not a known request type", input.Type)}
	}
	if input.Description == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if groupID == "" {
		return nil, &ValidationError{Field: "group_id", Reason: "must not be empty"}
	}
	if input.RequesterID == "" || input.RequesterName == "" {
		return nil, &ValidationError{Field: "requester", Reason: "requester id and name are required"}
	}

	request := &model.ApprovalRequest{
		ID:            uuid.NewString(),
		Type:          reqType,
		RequesterID:   input.RequesterID,
		RequesterName: input.RequesterName,
		GroupID:       groupID,
		GroupName:     input.GroupName,
		Description:   input.Description,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, request); createErr != nil {
			return &StorageError{Op: "create approval request", Err: createErr}
		}

		notification := &model.Notification{
			Title:     "New approval request",
			Message:   fmt.Sprintf("%s submitted a %s request in %s", request.RequesterName, request.Type, request.GroupName),
			Type:      model.NotificationTypeGroup,
			Priority:  model.PriorityMedium,
			ActionURL: fmt.Sprintf("/groups/%s/approvals/%s", request.GroupID, request.ID),
			GroupName: request.GroupName,
		}
		if _, appendErr := s.notifications.Append(txCtx, notification); appendErr != nil {
			return appendErr
		}

		if auditErr := s.writeAudit(txCtx, model.ActionCreateApprovalRequest, request, nil); auditErr != nil {
			return auditErr
		}

		repository.AfterCommit(txCtx, func() {
			s.bus.Publish(event.TopicApprovalsChanged)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", request.ID).
		Str("group_id", request.GroupID).
		Str("type", string(request.Type)).
		Msg("approval request created")
	return request, nil
}

func (s *approvalService) Get(ctx context.Context, groupID, id string) (*model.ApprovalRequest, error) {
	request, err := s.repo.Get(ctx, groupID, id)
	if err == repository.ErrNotFound {
		return nil, &NotFoundError{GroupID: groupID, ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "get approval request", Err: err}
	}
	return request, nil
}

func (s *approvalService) List(ctx context.Context, groupID string) ([]model.ApprovalRequest, error) {
	requests, err := s.repo.List(ctx, groupID)
	if err != nil {
		return nil, &StorageError{Op: "list approval requests", Err: err}
	}
	return requests, nil
}

// ListByStatus is a pure snapshot read: it reflects the persisted state at
// call time and has no side effects.
func (s *approvalService) ListByStatus(ctx context.Context, groupID string, status model.ApprovalStatus) ([]model.ApprovalRequest, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a known status", status)}
	}
	requests, err := s.repo.ListByStatus(ctx, groupID, status)
	if err != nil {
		return nil, &StorageError{Op: "list approval requests by status", Err: err}
	}
	return requests, nil
}

// Resolve transitions exactly one pending request to a terminal status.
// The CAS, the requester notification and the audit entry commit in one
// transaction, so the transition either fully happens and fully notifies,
// or does neither. A lost CAS surfaces as AlreadyResolvedError and must not
// be retried.
func (s *approvalService) Resolve(ctx context.Context, groupID, id string, action ResolveAction, resolver model.Resolver) (*model.ApprovalRequest, error) {
	newStatus, ok := action.status()
	if !ok {
		return nil, &InvalidTransitionError{Action: string(action)}
	}
	if resolver.ID == "" || resolver.Name == "" {
		return nil, &ValidationError{Field: "resolver", Reason: "resolver id and name are required"}
	}

	var resolved *model.ApprovalRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var resolveErr error
		resolved, resolveErr = s.repo.Resolve(txCtx, groupID, id, newStatus, resolver, time.Now().UTC())
		switch resolveErr {
		case nil:
		case repository.ErrNotFound:
			return &NotFoundError{GroupID: groupID, ID: id}
		case repository.ErrConflict:
			current, getErr := s.repo.Get(txCtx, groupID, id)
			if getErr != nil {
				return &AlreadyResolvedError{ID: id}
			}
			return &AlreadyResolvedError{ID: id, Status: current.Status}
		default:
			return &StorageError{Op: "resolve approval request", Err: resolveErr}
		}

		notification := &model.Notification{
			RecipientID: resolved.RequesterID,
			Title:       resolutionTitle(newStatus),
			Message: fmt.Sprintf("Your %s request in %s was %s by %s",
				resolved.Type, resolved.GroupName, newStatus, resolver.Name),
			Type:      model.NotificationTypeGroup,
			Priority:  resolutionPriority(newStatus),
			ActionURL: fmt.Sprintf("/groups/%s/approvals/%s", resolved.GroupID, resolved.ID),
			GroupName: resolved.GroupName,
		}
		if _, appendErr := s.notifications.Append(txCtx, notification); appendErr != nil {
			return appendErr
		}

		auditAction := model.ActionApproveRequest
		if newStatus == model.StatusRejected {
			auditAction = model.ActionRejectRequest
		}
		if auditErr := s.writeAudit(txCtx, auditAction, resolved, &resolver); auditErr != nil {
			return auditErr
		}

		repository.AfterCommit(txCtx, func() {
			s.bus.Publish(event.TopicApprovalsChanged)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", resolved.ID).
		Str("group_id", resolved.GroupID).
		Str("status", string(resolved.Status)).
		Str("resolved_by", resolver.ID).
		Msg("approval request resolved")
	return resolved, nil
}

func (s *approvalService) writeAudit(ctx context.Context, action string, request *model.ApprovalRequest, resolver *model.Resolver) error {
	details, _ := json.Marshal(map[string]interface{}{
		"type":     request.Type,
		"group_id": request.GroupID,
		"status":   request.Status,
	})

	entry := &model.AuditLog{
		Action:     action,
		EntityID:   request.ID,
		EntityName: string(request.Type),
		Details:    string(details),
	}
	if resolver != nil {
		entry.UserID = &resolver.ID
	} else if request.RequesterID != "" {
		requesterID := request.RequesterID
		entry.UserID = &requesterID
	}

	if err := s.audits.Create(ctx, entry); err != nil {
		return &StorageError{Op: "write audit log", Err: err}
	}
	return nil
}

func resolutionTitle(status model.ApprovalStatus) string {
	if status == model.StatusApproved {
		return "Request approved"
	}
	return "Request rejected"
}

func resolutionPriority(status model.ApprovalStatus) model.NotificationPriority {
	if status == model.StatusRejected {
		return model.PriorityHigh
	}
	return model.PriorityMedium
}
