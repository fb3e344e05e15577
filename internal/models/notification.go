package models

import "time"

// Notification is a persisted in-app notification. UserID is nullable: a
// NULL user id addresses the shared admin inbox, which is a separate logical
// channel from per-user notifications and must never be mixed into user
// listings (or vice versa).
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `gorm:"index" json:"user_id"`
	TitleAr   string     `gorm:"size:255" json:"title_ar"`
	TitleEn   string     `gorm:"size:255" json:"title_en"`
	MessageAr string     `gorm:"type:text" json:"message_ar"`
	MessageEn string     `gorm:"type:text" json:"message_en"`
	Type      string     `gorm:"size:50;not null;index;default:general" json:"type"`
	Data      string     `gorm:"type:text" json:"data"` // JSON payload
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
