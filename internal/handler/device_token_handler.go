package handler

import (
	"net/http"

	"github.com/Mujanati13/Qabalan-sub006/internal/middleware"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
)

type DeviceTokenHandler struct {
	svc *service.DeviceTokenService
}

func NewDeviceTokenHandler(svc *service.DeviceTokenService) *DeviceTokenHandler {
	return &DeviceTokenHandler{svc: svc}
}

type RegisterTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	Platform   string `json:"platform" binding:"required,oneof=android ios web"`
	DeviceID   string `json:"device_id"`
	AppVersion string `json:"app_version"`
}

type UnregisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *DeviceTokenHandler) Register(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	if err := h.svc.Register(c.Request.Context(), userID, req.Token, req.Platform, req.DeviceID, req.AppVersion); err != nil {
		logger.Errorf("[Tokens] register for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DeviceTokenHandler) Unregister(c *gin.Context) {
	var req UnregisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Unregister(c.Request.Context(), req.Token); err != nil {
		logger.Errorf("[Tokens] unregister: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token unregistration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
