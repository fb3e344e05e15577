package repository

import (
	"time"

	"github.com/Mujanati13/Qabalan-sub006/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository owns all writes to the device_tokens table.
type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Register upserts a device token by its unique token string. Re-registering
// an existing token refreshes its metadata and reactivates it instead of
// erroring. The upsert is atomic so concurrent registrations of the same
// token cannot race a read-then-write.
func (r *DeviceTokenRepository) Register(userID uint, token, platform, deviceID, appVersion string) error {
	now := time.Now()
	row := models.DeviceToken{
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		DeviceID:   deviceID,
		AppVersion: appVersion,
		IsActive:   true,
		LastUsedAt: &now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "platform", "device_id", "app_version", "is_active", "last_used_at", "updated_at",
		}),
	}).Create(&row).Error
}

// Unregister marks a token inactive. Unknown or already-inactive tokens are
// a no-op success.
func (r *DeviceTokenRepository) Unregister(token string) error {
	return r.db.Model(&models.DeviceToken{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

// ActiveTokensByUser returns the active token strings for one user.
func (r *DeviceTokenRepository) ActiveTokensByUser(userID uint) ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.DeviceToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("token", &tokens).Error
	return tokens, err
}

// AllActiveTokens returns every distinct active token, for broadcast sends.
func (r *DeviceTokenRepository) AllActiveTokens() ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.DeviceToken{}).
		Where("is_active = ?", true).
		Distinct("token").
		Pluck("token", &tokens).Error
	return tokens, err
}

// DeactivateTokens bulk-marks tokens inactive. Called after the provider
// reports them invalid.
func (r *DeviceTokenRepository) DeactivateTokens(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.Model(&models.DeviceToken{}).
		Where("token IN ?", tokens).
		Update("is_active", false).Error
}

// TouchLastUsed refreshes last_used_at after a successful delivery.
func (r *DeviceTokenRepository) TouchLastUsed(tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.Model(&models.DeviceToken{}).
		Where("token IN ?", tokens).
		Update("last_used_at", time.Now()).Error
}
