package models

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is derived from the task list on demand and never stored.
// Only its per-user read/dismiss state is persisted (NotificationState).
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Severity  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	RelatedID uuid.UUID `json:"related_id"`
}

type NotificationState struct {
	UserID         uuid.UUID  `json:"user_id"`
	NotificationID string     `json:"notification_id"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
}

// AlertChannel names an outbound path an alert can be dispatched through.
type AlertChannel string

const (
	ChannelKafka AlertChannel = "kafka"
	ChannelEmail AlertChannel = "email"
)
