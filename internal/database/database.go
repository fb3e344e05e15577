package database

import (
	"github.com/Mujanati13/Qabalan-sub006/config"
	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationLog{},
		&models.Order{},
		&models.SupportTicket{},
		&models.TicketReply{},
	)
}

// SeedAdmin creates the default admin account if no admin exists yet.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		logger.Errorf("[Seed] hash admin password: %v", err)
		return
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@qabalan.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.Errorf("[Seed] create admin: %v", err)
		return
	}
	logger.Infof("[Seed] default admin created (admin@qabalan.com)")
}
