package models

import "time"

type Order struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Status     string    `gorm:"size:30;not null;index;default:pending" json:"status"`
	TotalCents int64     `gorm:"not null" json:"total_cents"`
	Currency   string    `gorm:"size:3;default:JOD" json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
