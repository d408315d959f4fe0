package model

import "time"

// NotificationType is the closed set of notification categories.
type NotificationType string

const (
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeTransaction NotificationType = "transaction"
	NotificationTypeGroup       NotificationType = "group"
	NotificationTypeEvent       NotificationType = "event"
	NotificationTypeSecurity    NotificationType = "security"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeSystem, NotificationTypeTransaction,
		NotificationTypeGroup, NotificationTypeEvent, NotificationTypeSecurity:
		return true
	}
	return false
}

// NotificationPriority ranks how loudly a notification is surfaced.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is an append-only record in the process-wide notification
// log. IsRead is the only mutable field and only ever flips false -> true.
type Notification struct {
	ID          string               `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID string               `gorm:"type:varchar(64);index" json:"recipient_id"`
	Title       string               `gorm:"type:varchar(255);not null" json:"title"`
	Message     string               `gorm:"type:text" json:"message"`
	Type        NotificationType     `gorm:"type:varchar(20);not null;index" json:"type"`
	Priority    NotificationPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	IsRead      bool                 `gorm:"not null;default:false;index" json:"is_read"`
	Timestamp   time.Time            `gorm:"not null;index" json:"timestamp"`
	ActionURL   string               `gorm:"type:text" json:"action_url,omitempty"`
	GroupName   string               `gorm:"type:varchar(255)" json:"group_name,omitempty"`
}
