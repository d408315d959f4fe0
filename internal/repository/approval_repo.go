package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

// ApprovalRepository is the durable keyed store of approval requests,
// scoped by group.
type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	Get(ctx context.Context, groupID, id string) (*model.ApprovalRequest, error)
	List(ctx context.Context, groupID string) ([]model.ApprovalRequest, error)
	ListByStatus(ctx context.Context, groupID string, status model.ApprovalStatus) ([]model.ApprovalRequest, error)
	Put(ctx context.Context, req *model.ApprovalRequest) error
	Resolve(ctx context.Context, groupID, id string, newStatus model.ApprovalStatus, resolver model.Resolver, at time.Time) (*model.ApprovalRequest, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) Get(ctx context.Context, groupID, id string) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	err := GetDB(ctx, r.db).First(&req, "id = ? AND group_id = ?", id, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) List(ctx context.Context, groupID string) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) ListByStatus(ctx context.Context, groupID string, status model.ApprovalStatus) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Where("group_id = ? AND status = ?", groupID, status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Put upserts a full record keyed by its primary key.
func (r *approvalRepository) Put(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

// Resolve transitions a pending request to a terminal status as a single
// conditional UPDATE: the row is matched on (id, group_id, status=pending),
// so of two concurrent resolutions exactly one affects a row and the other
// gets ErrConflict. It never overwrites a terminal record.
func (r *approvalRepository) Resolve(ctx context.Context, groupID, id string, newStatus model.ApprovalStatus, resolver model.Resolver, at time.Time) (*model.ApprovalRequest, error) {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.ApprovalRequest{}).
		Where("id = ? AND group_id = ? AND status = ?", id, groupID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":           newStatus,
			"resolved_at":      at,
			"resolved_by_id":   resolver.ID,
			"resolved_by_name": resolver.Name,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Distinguish "no such record" from "already resolved".
		var existing model.ApprovalRequest
		err := db.First(&existing, "id = ? AND group_id = ?", id, groupID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	var updated model.ApprovalRequest
	if err := db.First(&updated, "id = ? AND group_id = ?", id, groupID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}
