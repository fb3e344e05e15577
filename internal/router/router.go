package router

import (
	"time"

	"github.com/Mujanati13/Qabalan-sub006/config"
	"github.com/Mujanati13/Qabalan-sub006/internal/handler"
	"github.com/Mujanati13/Qabalan-sub006/internal/middleware"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"
	"github.com/Mujanati13/Qabalan-sub006/internal/ws"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// Live connections
	hub := ws.NewHub(nil)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc.Enabled() {
		logger.Infof("[FCM] push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		logger.Warnf("[FCM] push notifications disabled: init failed (check service account file)")
	} else {
		logger.Infof("[FCM] push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	deviceTokenSvc := service.NewDeviceTokenService(tokenRepo, fcmSvc, cfg.Firebase.DefaultTopic)
	notifSvc := service.NewNotificationService(notifRepo, logRepo, tokenRepo, fcmSvc, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	tokenHandler := handler.NewDeviceTokenHandler(deviceTokenSvc)
	notifHandler := handler.NewNotificationHandler(notifRepo, logRepo, notifSvc)
	orderHandler := handler.NewOrderHandler(orderRepo, notifSvc, hub)
	ticketHandler := handler.NewTicketHandler(ticketRepo, userRepo, notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.StaffRequired()

	r.GET("/ws", ws.ServeWS(&cfg.JWT, hub))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.POST("/devices", tokenHandler.Register)
			me.DELETE("/devices", tokenHandler.Unregister)
			me.GET("/notifications", notifHandler.List)
			me.GET("/notifications/unread-count", notifHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notifHandler.MarkRead)
			me.PUT("/notifications/read-all", notifHandler.MarkAllRead)
		}

		api.POST("/orders", authMw, orderHandler.Create)
		api.POST("/tickets", authMw, ticketHandler.Create)
		api.POST("/tickets/:id/replies", authMw, ticketHandler.Reply)

		admin := api.Group("/admin")
		admin.Use(authMw, staffMw)
		{
			admin.GET("/notifications", notifHandler.AdminList)
			admin.GET("/notifications/unread-count", notifHandler.AdminUnreadCount)
			admin.GET("/notifications/:id/logs", notifHandler.DeliveryLogs)
			admin.POST("/notifications/send", notifHandler.Send)
			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		}
	}

	return r
}
