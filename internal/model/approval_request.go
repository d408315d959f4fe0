package model

import "time"

// ApprovalType is the closed set of request categories.
type ApprovalType string

const (
	ApprovalTypeMembership  ApprovalType = "membership"
	ApprovalTypeContent     ApprovalType = "content"
	ApprovalTypeEvent       ApprovalType = "event"
	ApprovalTypeMarketplace ApprovalType = "marketplace"
	ApprovalTypeDonation    ApprovalType = "donation"
)

// Valid reports whether t belongs to the closed set.
func (t ApprovalType) Valid() bool {
	switch t {
	case ApprovalTypeMembership, ApprovalTypeContent, ApprovalTypeEvent,
		ApprovalTypeMarketplace, ApprovalTypeDonation:
		return true
	}
	return false
}

// ApprovalStatus is the request lifecycle state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a final state.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ApprovalRequest is a unit of work awaiting a binary accept/reject decision.
// Once Status leaves pending the record is immutable: all Resolved* fields
// are set in the same write that transitions the status, and no further
// status change is permitted.
type ApprovalRequest struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	Type           ApprovalType   `gorm:"type:varchar(20);not null;index" json:"type"`
	RequesterID    string         `gorm:"type:varchar(64);not null;index" json:"requester_id"`
	RequesterName  string         `gorm:"type:varchar(255);not null" json:"requester_name"`
	GroupID        string         `gorm:"type:varchar(64);not null;index" json:"group_id"`
	GroupName      string         `gorm:"type:varchar(255);not null" json:"group_name"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Status         ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	ResolvedByID   *string        `gorm:"type:varchar(64)" json:"resolved_by_id,omitempty"`
	ResolvedByName *string        `gorm:"type:varchar(255)" json:"resolved_by_name,omitempty"`
}

// Resolver identifies the admin attributed with a resolution.
type Resolver struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
