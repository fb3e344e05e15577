package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mujanati13/Qabalan-sub006/internal/handler"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// fakeAuth stands in for the JWT middleware: identity comes from headers.
func fakeAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupEnv(t *testing.T, userID uint, role string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationLog{},
	))

	notifRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	push := service.NewFCMService("") // disabled mode
	notifSvc := service.NewNotificationService(notifRepo, logRepo, tokenRepo, push, nil)
	tokenSvc := service.NewDeviceTokenService(tokenRepo, push, "all_users")

	notifHandler := handler.NewNotificationHandler(notifRepo, logRepo, notifSvc)
	tokenHandler := handler.NewDeviceTokenHandler(tokenSvc)

	r := gin.New()
	auth := fakeAuth(userID, role)
	r.POST("/me/devices", auth, tokenHandler.Register)
	r.DELETE("/me/devices", auth, tokenHandler.Unregister)
	r.GET("/me/notifications", auth, notifHandler.List)
	r.PUT("/me/notifications/:id/read", auth, notifHandler.MarkRead)
	r.GET("/admin/notifications", auth, notifHandler.AdminList)
	r.GET("/admin/notifications/:id/logs", auth, notifHandler.DeliveryLogs)
	r.POST("/admin/notifications/send", auth, notifHandler.Send)
	return &testEnv{db: db, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRegisterDeviceEndpoint(t *testing.T) {
	env := setupEnv(t, 42, "customer")

	w := env.do(t, http.MethodPost, "/me/devices", gin.H{
		"token":    "tok-abc123xyz",
		"platform": "android",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.DeviceToken{}).Where("user_id = ? AND is_active = ?", 42, true).Count(&count)
	assert.EqualValues(t, 1, count)

	// Invalid platform is rejected by binding.
	w = env.do(t, http.MethodPost, "/me/devices", gin.H{
		"token":    "tok-2",
		"platform": "blackberry",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserListingExcludesAdminInbox(t *testing.T) {
	env := setupEnv(t, 42, "customer")
	uid := uint(42)
	require.NoError(t, env.db.Create(&models.Notification{UserID: &uid, TitleEn: "mine"}).Error)
	require.NoError(t, env.db.Create(&models.Notification{UserID: nil, TitleEn: "admin inbox"}).Error)

	w := env.do(t, http.MethodGet, "/me/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "mine", resp.Notifications[0].TitleEn)
}

func TestMarkReadForeignRowReturnsNotFound(t *testing.T) {
	env := setupEnv(t, 42, "customer")
	other := uint(99)
	n := models.Notification{UserID: &other, TitleEn: "not yours"}
	require.NoError(t, env.db.Create(&n).Error)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/me/notifications/%d/read", n.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	admin := models.Notification{UserID: nil, TitleEn: "shared"}
	require.NoError(t, env.db.Create(&admin).Error)
	w = env.do(t, http.MethodPut, fmt.Sprintf("/me/notifications/%d/read", admin.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendEndpointValidationFailure(t *testing.T) {
	env := setupEnv(t, 1, "admin")

	w := env.do(t, http.MethodPost, "/admin/notifications/send", gin.H{
		"target_mode": "users",
		"user_ids":    []uint{},
		"title_en":    "Hello",
		"save_to_db":  true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	env.db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count, "rejected dispatch must not persist rows")
}

func TestSendEndpointUserMode(t *testing.T) {
	env := setupEnv(t, 1, "admin")

	w := env.do(t, http.MethodPost, "/admin/notifications/send", gin.H{
		"target_mode": "user",
		"user_id":     42,
		"title_en":    "Hi",
		"message_en":  "Hello there",
		"save_to_db":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.DispatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.NotificationID)

	var n models.Notification
	require.NoError(t, env.db.First(&n, *resp.NotificationID).Error)
	require.NotNil(t, n.UserID)
	assert.EqualValues(t, 42, *n.UserID)
}

func TestAdminDeliveryLogsEndpoint(t *testing.T) {
	env := setupEnv(t, 1, "admin")
	tokenRepo := repository.NewDeviceTokenRepository(env.db)
	require.NoError(t, tokenRepo.Register(42, "tok-42", "android", "", ""))

	w := env.do(t, http.MethodPost, "/admin/notifications/send", gin.H{
		"target_mode": "user",
		"user_id":     42,
		"title_en":    "Hi",
		"message_en":  "Hello there",
		"save_to_db":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp service.DispatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.NotificationID)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/admin/notifications/%d/logs", *resp.NotificationID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Logs []models.NotificationLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Logs, 1)
	assert.Equal(t, "tok-42", body.Logs[0].Target)

	w = env.do(t, http.MethodGet, "/admin/notifications/abc/logs", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
