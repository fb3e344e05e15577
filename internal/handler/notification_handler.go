package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Mujanati13/Qabalan-sub006/internal/middleware"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	repo *repository.NotificationRepository
	logs *repository.NotificationLogRepository
	svc  *service.NotificationService
}

func NewNotificationHandler(repo *repository.NotificationRepository, logs *repository.NotificationLogRepository, svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{repo: repo, logs: logs, svc: svc}
}

// List returns the caller's own notifications; admin-inbox rows are never
// included here.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.repo.UnreadCountByUser(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	affected, err := h.repo.MarkRead(uint(id), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	affected, err := h.repo.MarkAllRead(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": affected})
}

// AdminList returns the shared admin inbox (staff only).
func (h *NotificationHandler) AdminList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListAdmin(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) AdminUnreadCount(c *gin.Context) {
	count, err := h.repo.UnreadCountAdmin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// DeliveryLogs returns the per-token delivery outcomes recorded for one
// notification (staff only).
func (h *NotificationHandler) DeliveryLogs(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	list, err := h.logs.ListByNotification(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": list})
}

// Send exposes the dispatch contract to the admin dashboard.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Dispatch(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMissingUserTarget) ||
			errors.Is(err, service.ErrMissingUsersTarget) ||
			errors.Is(err, service.ErrMissingTopicTarget) ||
			errors.Is(err, service.ErrUnknownTargetMode) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.Errorf("[Notify] dispatch (%s): %v", req.TargetMode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "dispatch failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
