package models

import "time"

type SupportTicket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Status    string    `gorm:"size:20;not null;index;default:open" json:"status"` // open | closed
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Replies []TicketReply `gorm:"foreignKey:TicketID" json:"replies,omitempty"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

type TicketReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	FromStaff bool      `gorm:"default:false" json:"from_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func (TicketReply) TableName() string {
	return "ticket_replies"
}
