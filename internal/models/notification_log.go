package models

import "time"

// NotificationLog is one delivery attempt to one target. Broadcast sends
// write one row per token, not one row for the whole broadcast. Title and
// message are snapshotted here so the audit trail survives later edits to
// the notification row. Append-only.
type NotificationLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	NotificationID    *uint     `gorm:"index" json:"notification_id"`
	UserID            *uint     `gorm:"index" json:"user_id"`
	Target            string    `gorm:"size:512;not null" json:"target"` // device token or topic name
	Title             string    `gorm:"size:255" json:"title"`
	Message           string    `gorm:"type:text" json:"message"`
	Channel           string    `gorm:"size:20;not null;default:push" json:"channel"`
	Status            string    `gorm:"size:20;not null;index" json:"status"` // sent | failed
	ProviderMessageID string    `gorm:"size:255" json:"provider_message_id"`
	ErrorMessage      string    `gorm:"type:text" json:"error_message"`
	Context           string    `gorm:"type:text" json:"context"` // JSON, e.g. {"is_broadcast":true}
	SentAt            time.Time `json:"sent_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
