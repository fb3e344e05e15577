package models

import "time"

// DeviceToken is one registered push target. A token string is globally
// unique; re-registering an existing token updates the row instead of
// erroring. Rows are deactivated, never deleted, so delivery history keeps
// its references.
type DeviceToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Token      string     `gorm:"uniqueIndex;size:512;not null" json:"token"`
	Platform   string     `gorm:"size:20;not null" json:"platform"` // android | ios | web
	DeviceID   string     `gorm:"size:255" json:"device_id"`
	AppVersion string     `gorm:"size:50" json:"app_version"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
