package repository

import (
	"time"

	"github.com/Mujanati13/Qabalan-sub006/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// ListByUser returns notifications addressed to one concrete user. Admin
// inbox rows (user_id IS NULL) are never mixed in.
func (r *NotificationRepository) ListByUser(userID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListAdmin returns the shared admin inbox (user_id IS NULL only).
func (r *NotificationRepository) ListAdmin(limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id IS NULL").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) UnreadCountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) UnreadCountAdmin() (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id IS NULL AND is_read = ?", false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification read for the calling user. A row is
// touched only when it belongs to the caller or is a shared admin
// notification (user_id IS NULL); marking someone else's row affects
// nothing. Returns the number of rows updated.
func (r *NotificationRepository) MarkRead(id, userID uint) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

// MarkAllRead marks every unread notification owned by the caller. Shared
// admin rows are left alone.
func (r *NotificationRepository) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}
