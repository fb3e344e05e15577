package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/middleware"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TicketHandler covers the support workflow only where it triggers
// notification delivery: a customer message notifies staff, a staff reply
// notifies the ticket owner.
type TicketHandler struct {
	tickets *repository.TicketRepository
	users   *repository.UserRepository
	notify  *service.NotificationService
}

func NewTicketHandler(tickets *repository.TicketRepository, users *repository.UserRepository, notify *service.NotificationService) *TicketHandler {
	return &TicketHandler{tickets: tickets, users: users, notify: notify}
}

type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required,min=3,max=255"`
	Body    string `json:"body" binding:"required"`
}

type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	ticket := models.SupportTicket{UserID: userID, Subject: req.Subject, Status: "open"}
	if err := h.tickets.Create(&ticket); err != nil {
		logger.Errorf("[Support] create ticket: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ticket creation failed"})
		return
	}
	reply := models.TicketReply{TicketID: ticket.ID, UserID: userID, Body: req.Body}
	if err := h.tickets.AddReply(&reply); err != nil {
		logger.Errorf("[Support] first message for ticket %d: %v", ticket.ID, err)
	}

	h.notifyStaff(c, ticket.ID, fmt.Sprintf("New support ticket: %s", req.Subject),
		fmt.Sprintf("تذكرة دعم جديدة: %s", req.Subject))
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

func (h *TicketHandler) Reply(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := h.tickets.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	userID := middleware.GetUserID(c)
	fromStaff := domain.IsElevated(middleware.GetRole(c))
	reply := models.TicketReply{TicketID: ticket.ID, UserID: userID, Body: req.Body, FromStaff: fromStaff}
	if err := h.tickets.AddReply(&reply); err != nil {
		logger.Errorf("[Support] reply to ticket %d: %v", ticket.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply failed"})
		return
	}

	if fromStaff {
		// Staff replied: notify the ticket owner directly.
		if _, err := h.notify.Dispatch(c.Request.Context(), service.DispatchRequest{
			TargetMode: domain.TargetModeUser,
			UserID:     ticket.UserID,
			TitleAr:    "رد على تذكرتك",
			TitleEn:    "Reply to your ticket",
			MessageAr:  fmt.Sprintf("تم الرد على تذكرتك رقم %d", ticket.ID),
			MessageEn:  fmt.Sprintf("Your ticket #%d received a reply", ticket.ID),
			Type:       domain.NotificationTypeSupport,
			Data:       map[string]interface{}{"ticket_id": ticket.ID},
			SaveToDB:   true,
		}); err != nil {
			logger.Errorf("[Support] notify owner of ticket %d: %v", ticket.ID, err)
		}
	} else {
		h.notifyStaff(c, ticket.ID, fmt.Sprintf("New reply on ticket #%d", ticket.ID),
			fmt.Sprintf("رد جديد على التذكرة رقم %d", ticket.ID))
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// notifyStaff targets the staff accounts directly so support chatter never
// reaches customer devices.
func (h *TicketHandler) notifyStaff(c *gin.Context, ticketID uint, messageEn, messageAr string) {
	staffIDs, err := h.users.StaffIDs()
	if err != nil {
		logger.Errorf("[Support] resolve staff for ticket %d: %v", ticketID, err)
		return
	}
	if len(staffIDs) == 0 {
		logger.Warnf("[Support] no staff accounts to notify for ticket %d", ticketID)
		return
	}
	if _, err := h.notify.Dispatch(c.Request.Context(), service.DispatchRequest{
		TargetMode: domain.TargetModeUsers,
		UserIDs:    staffIDs,
		TitleAr:    "الدعم الفني",
		TitleEn:    "Support",
		MessageAr:  messageAr,
		MessageEn:  messageEn,
		Type:       domain.NotificationTypeSupport,
		Data:       map[string]interface{}{"ticket_id": ticketID},
		SaveToDB:   true,
	}); err != nil {
		logger.Errorf("[Support] notify staff for ticket %d: %v", ticketID, err)
	}
}
