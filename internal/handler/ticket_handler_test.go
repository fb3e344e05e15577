package handler_test

import (
	"net/http"
	"testing"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
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

func setupTicketEnv(t *testing.T, userID uint, role string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SupportTicket{},
		&models.TicketReply{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationLog{},
	))

	ticketRepo := repository.NewTicketRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	push := service.NewFCMService("") // disabled mode
	notifSvc := service.NewNotificationService(notifRepo, logRepo, tokenRepo, push, nil)
	ticketHandler := handler.NewTicketHandler(ticketRepo, userRepo, notifSvc)

	r := gin.New()
	auth := fakeAuth(userID, role)
	r.POST("/tickets", auth, ticketHandler.Create)
	r.POST("/tickets/:id/replies", auth, ticketHandler.Reply)
	return &testEnv{db: db, router: r}
}

func TestTicketCreateNotifiesStaffAccountsOnly(t *testing.T) {
	env := setupTicketEnv(t, 7, "customer")
	admin := models.User{Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
	staff := models.User{Name: "Agent", Email: "agent@example.com", Role: domain.RoleStaff}
	cust := models.User{Name: "Buyer", Email: "buyer@example.com", Role: domain.RoleCustomer}
	for _, u := range []*models.User{&admin, &staff, &cust} {
		require.NoError(t, env.db.Create(u).Error)
	}

	w := env.do(t, http.MethodPost, "/tickets", gin.H{
		"subject": "Order never arrived",
		"body":    "It has been two weeks.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var notifs []models.Notification
	require.NoError(t, env.db.Find(&notifs).Error)
	require.Len(t, notifs, 2, "one row per staff account")
	var recipients []uint
	for _, n := range notifs {
		require.NotNil(t, n.UserID, "staff alerts must not land in the shared admin inbox")
		recipients = append(recipients, *n.UserID)
	}
	assert.ElementsMatch(t, []uint{admin.ID, staff.ID}, recipients)
}

func TestTicketCreateWithoutStaffStillSucceeds(t *testing.T) {
	env := setupTicketEnv(t, 7, "customer")

	w := env.do(t, http.MethodPost, "/tickets", gin.H{
		"subject": "Nobody home",
		"body":    "Is this thing on?",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var count int64
	env.db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}
