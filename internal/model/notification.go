package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a single entry in a user's workspace feed.
// ReadAt, SnoozedTill and ArchivedAt are independent; any combination is valid.
type Notification struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	WorkspaceID      uuid.UUID  `db:"workspace_id" json:"workspace"`
	ProjectID        *uuid.UUID `db:"project_id" json:"project"`
	Data             JSONMap    `db:"data" json:"data"`
	EntityIdentifier *uuid.UUID `db:"entity_identifier" json:"entity_identifier"`
	EntityName       string     `db:"entity_name" json:"entity_name"`
	Title            string     `db:"title" json:"title"`
	Message          JSONMap    `db:"message" json:"message"`
	MessageHTML      string     `db:"message_html" json:"message_html"`
	MessageStripped  *string    `db:"message_stripped" json:"message_stripped"`
	Sender           string     `db:"sender" json:"sender"`
	TriggeredByID    *uuid.UUID `db:"triggered_by_id" json:"triggered_by"`
	ReceiverID       uuid.UUID  `db:"receiver_id" json:"receiver"`
	ReadAt           *time.Time `db:"read_at" json:"read_at"`
	SnoozedTill      *time.Time `db:"snoozed_till" json:"snoozed_till"`
	ArchivedAt       *time.Time `db:"archived_at" json:"archived_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// NotificationEvent is published after a notification changes state
type NotificationEvent struct {
	Type           string    `json:"type"`
	NotificationID uuid.UUID `json:"notification_id"`
	WorkspaceID    uuid.UUID `json:"workspace_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

const (
	NotificationEventSnoozed    = "notification.snoozed"
	NotificationEventRead       = "notification.read"
	NotificationEventUnread     = "notification.unread"
	NotificationEventArchived   = "notification.archived"
	NotificationEventUnarchived = "notification.unarchived"
)

// NotificationListParams carries the raw list query values.
// Absent parameters must already hold their defaults.
type NotificationListParams struct {
	OrderBy  string
	Snoozed  string
	Archived string
	Read     string
	Type     string
}

// DefaultNotificationListParams returns the values used when a query parameter is absent
func DefaultNotificationListParams() NotificationListParams {
	return NotificationListParams{
		OrderBy:  "-created_at",
		Snoozed:  "false",
		Archived: "false",
		Read:     "false",
		Type:     string(NotificationTypeAll),
	}
}
