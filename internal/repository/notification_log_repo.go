package repository

import (
	"github.com/Mujanati13/Qabalan-sub006/internal/models"

	"gorm.io/gorm"
)

// NotificationLogRepository appends delivery-attempt rows. Entries are
// never updated or deleted.
type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Create(entry *models.NotificationLog) error {
	return r.db.Create(entry).Error
}

func (r *NotificationLogRepository) CreateBatch(entries []models.NotificationLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

func (r *NotificationLogRepository) ListByNotification(notificationID uint) ([]models.NotificationLog, error) {
	var list []models.NotificationLog
	err := r.db.Where("notification_id = ?", notificationID).
		Order("sent_at DESC").
		Find(&list).Error
	return list, err
}
