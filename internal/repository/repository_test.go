package repository_test

import (
	"testing"

	"github.com/Mujanati13/Qabalan-sub006/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func uintPtr(v uint) *uint { return &v }
