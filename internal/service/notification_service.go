package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"
)

var (
	ErrMissingUserTarget  = errors.New("target_mode \"user\" requires a user id")
	ErrMissingUsersTarget = errors.New("target_mode \"users\" requires a non-empty user id list")
	ErrMissingTopicTarget = errors.New("target_mode \"topic\" requires a topic name")
	ErrUnknownTargetMode  = errors.New("unknown target mode")
)

// LiveEmitter is the live-socket channel the orchestrator notifies after a
// dispatch. The ws hub implements it. Push and socket are independent
// delivery channels for the same logical event.
type LiveEmitter interface {
	EmitToUser(userID uint, event string, payload interface{})
	EmitToAdmins(event string, payload interface{})
}

// DispatchRequest is the orchestrator's public contract. Exactly one
// targeting mode is used; its required field must be set.
type DispatchRequest struct {
	TargetMode string                 `json:"target_mode" binding:"required"`
	UserID     uint                   `json:"user_id"`
	UserIDs    []uint                 `json:"user_ids"`
	Topic      string                 `json:"topic"`
	TitleAr    string                 `json:"title_ar"`
	TitleEn    string                 `json:"title_en"`
	MessageAr  string                 `json:"message_ar"`
	MessageEn  string                 `json:"message_en"`
	Type       string                 `json:"type"`
	Image      string                 `json:"image"`
	Data       map[string]interface{} `json:"data"`
	SaveToDB   bool                   `json:"save_to_db"`
}

// DispatchResult reports one completed dispatch. Token-addressed modes fill
// PushResults; topic mode fills PushResult; broadcast additionally carries
// totals.
type DispatchResult struct {
	Success        bool         `json:"success"`
	NotificationID *uint        `json:"notification_id,omitempty"`
	PushResults    []PushResult `json:"push_results,omitempty"`
	PushResult     *TopicResult `json:"push_result,omitempty"`
	TotalSent      int          `json:"total_sent,omitempty"`
	TotalFailed    int          `json:"total_failed,omitempty"`
}

// NotificationService coordinates one dispatch end to end: validate the
// target, persist the notification, resolve device tokens, deliver, log
// every attempt, then deactivate tokens the provider reported invalid. Each
// request is one-shot; there are no retries at this layer.
type NotificationService struct {
	notifRepo *repository.NotificationRepository
	logRepo   *repository.NotificationLogRepository
	tokenRepo *repository.DeviceTokenRepository
	push      PushSender
	live      LiveEmitter
}

func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	logRepo *repository.NotificationLogRepository,
	tokenRepo *repository.DeviceTokenRepository,
	push PushSender,
	live LiveEmitter,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		logRepo:   logRepo,
		tokenRepo: tokenRepo,
		push:      push,
		live:      live,
	}
}

// Dispatch validates and routes one dispatch request. Validation failures
// reject before any side effect: no notification or log rows are written.
func (s *NotificationService) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if req.Type == "" {
		req.Type = domain.NotificationTypeGeneral
	}
	switch req.TargetMode {
	case domain.TargetModeUser:
		if req.UserID == 0 {
			return nil, ErrMissingUserTarget
		}
		return s.dispatchToUser(ctx, req, req.UserID)
	case domain.TargetModeUsers:
		if len(req.UserIDs) == 0 {
			return nil, ErrMissingUsersTarget
		}
		return s.dispatchToUsers(ctx, req)
	case domain.TargetModeBroadcast:
		return s.dispatchBroadcast(ctx, req)
	case domain.TargetModeTopic:
		if req.Topic == "" {
			return nil, ErrMissingTopicTarget
		}
		return s.dispatchToTopic(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTargetMode, req.TargetMode)
	}
}

func (s *NotificationService) dispatchToUser(ctx context.Context, req DispatchRequest, userID uint) (*DispatchResult, error) {
	notifID, err := s.persist(req, &userID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenRepo.ActiveTokensByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("resolve tokens for user %d: %w", userID, err)
	}
	// A target with no registered devices is not an error: the notification
	// is still available in-app if it was persisted.
	if len(tokens) == 0 {
		s.emitLive(userID, req)
		return &DispatchResult{Success: true, NotificationID: notifID, PushResults: []PushResult{}}, nil
	}

	mres := s.push.SendToTokens(ctx, tokens, s.pushPayload(req), s.pushData(req))
	s.logTokenResults(notifID, &userID, req, mres.Results, nil)
	s.cleanupInvalid(mres.Results)
	s.touchDelivered(mres.Results)
	s.emitLive(userID, req)

	return &DispatchResult{Success: true, NotificationID: notifID, PushResults: mres.Results}, nil
}

// dispatchToUsers delegates to the single-user path once per id, so each
// recipient gets its own notification row and its own delivery logs.
func (s *NotificationService) dispatchToUsers(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	out := &DispatchResult{Success: true, PushResults: []PushResult{}}
	for _, id := range req.UserIDs {
		res, err := s.dispatchToUser(ctx, req, id)
		if err != nil {
			return nil, err
		}
		out.PushResults = append(out.PushResults, res.PushResults...)
	}
	return out, nil
}

func (s *NotificationService) dispatchBroadcast(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	notifID, err := s.persist(req, nil)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenRepo.AllActiveTokens()
	if err != nil {
		return nil, fmt.Errorf("resolve broadcast tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.emitAdmins(req)
		return &DispatchResult{Success: true, NotificationID: notifID, PushResults: []PushResult{}}, nil
	}

	mres := s.push.SendToTokens(ctx, tokens, s.pushPayload(req), s.pushData(req))
	s.logTokenResults(notifID, nil, req, mres.Results, map[string]interface{}{"is_broadcast": true})
	s.cleanupInvalid(mres.Results)
	s.touchDelivered(mres.Results)
	s.emitAdmins(req)

	return &DispatchResult{
		Success:        true,
		NotificationID: notifID,
		PushResults:    mres.Results,
		TotalSent:      mres.SuccessCount,
		TotalFailed:    mres.FailureCount,
	}, nil
}

func (s *NotificationService) dispatchToTopic(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	notifID, err := s.persist(req, nil)
	if err != nil {
		return nil, err
	}

	tres := s.push.SendToTopic(ctx, req.Topic, s.pushPayload(req), s.pushData(req))

	// Topic sends are addressed by name, not token, so the whole call gets a
	// single log entry.
	status := domain.DeliveryStatusSent
	if !tres.Success {
		status = domain.DeliveryStatusFailed
	}
	entry := models.NotificationLog{
		NotificationID:    notifID,
		Target:            req.Topic,
		Title:             req.TitleEn,
		Message:           req.MessageEn,
		Channel:           domain.ChannelPush,
		Status:            status,
		ProviderMessageID: tres.MessageID,
		ErrorMessage:      tres.Error,
		Context:           mustJSON(map[string]interface{}{"topic": req.Topic, "is_topic": true}),
		SentAt:            time.Now(),
	}
	if err := s.logRepo.Create(&entry); err != nil {
		logger.Errorf("[Notify] topic delivery log write failed: %v", err)
	}
	s.emitAdmins(req)

	return &DispatchResult{Success: true, NotificationID: notifID, PushResult: &tres}, nil
}

// persist writes the notification row when requested. A nil userID
// addresses the shared admin inbox. Failures here fail the whole dispatch:
// the row is the user-visible record.
func (s *NotificationService) persist(req DispatchRequest, userID *uint) (*uint, error) {
	if !req.SaveToDB {
		return nil, nil
	}
	n := models.Notification{
		UserID:    userID,
		TitleAr:   req.TitleAr,
		TitleEn:   req.TitleEn,
		MessageAr: req.MessageAr,
		MessageEn: req.MessageEn,
		Type:      req.Type,
		Data:      mustJSON(req.Data),
	}
	if err := s.notifRepo.Create(&n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	return &n.ID, nil
}

// logTokenResults writes one delivery log row per token. A failed audit
// write must not roll back a push that already happened, so errors are
// logged and swallowed.
func (s *NotificationService) logTokenResults(notifID, userID *uint, req DispatchRequest, results []PushResult, extra map[string]interface{}) {
	entries := make([]models.NotificationLog, 0, len(results))
	now := time.Now()
	for _, r := range results {
		status := domain.DeliveryStatusSent
		if !r.Success {
			status = domain.DeliveryStatusFailed
		}
		entries = append(entries, models.NotificationLog{
			NotificationID:    notifID,
			UserID:            userID,
			Target:            r.Token,
			Title:             req.TitleEn,
			Message:           req.MessageEn,
			Channel:           domain.ChannelPush,
			Status:            status,
			ProviderMessageID: r.MessageID,
			ErrorMessage:      r.Error,
			Context:           mustJSON(extra),
			SentAt:            now,
		})
	}
	if err := s.logRepo.CreateBatch(entries); err != nil {
		logger.Errorf("[Notify] delivery log write failed: %v", err)
	}
}

// cleanupInvalid deactivates tokens whose failure matches the provider's
// invalid-token signature. Runs regardless of the overall send outcome;
// other failure kinds leave their tokens active.
func (s *NotificationService) cleanupInvalid(results []PushResult) {
	var dead []string
	for _, r := range results {
		if !r.Success && IsInvalidTokenError(r.Error) {
			dead = append(dead, r.Token)
		}
	}
	if len(dead) == 0 {
		return
	}
	if err := s.tokenRepo.DeactivateTokens(dead); err != nil {
		logger.Errorf("[Notify] deactivate %d invalid token(s): %v", len(dead), err)
		return
	}
	logger.Infof("[Notify] deactivated %d invalid token(s)", len(dead))
}

func (s *NotificationService) touchDelivered(results []PushResult) {
	var ok []string
	for _, r := range results {
		if r.Success {
			ok = append(ok, r.Token)
		}
	}
	if len(ok) == 0 {
		return
	}
	if err := s.tokenRepo.TouchLastUsed(ok); err != nil {
		logger.Errorf("[Notify] touch last_used: %v", err)
	}
}

func (s *NotificationService) emitLive(userID uint, req DispatchRequest) {
	if s.live == nil {
		return
	}
	s.live.EmitToUser(userID, domain.EventNotification, livePayload(req))
}

func (s *NotificationService) emitAdmins(req DispatchRequest) {
	if s.live == nil {
		return
	}
	payload := livePayload(req)
	if req.Type == domain.NotificationTypeSystem {
		payload["isSystem"] = true
	}
	s.live.EmitToAdmins(domain.EventNotification, payload)
}

func livePayload(req DispatchRequest) map[string]interface{} {
	return map[string]interface{}{
		"type":      req.Type,
		"message":   req.MessageEn,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *NotificationService) pushPayload(req DispatchRequest) PushNotification {
	return PushNotification{Title: req.TitleEn, Body: req.MessageEn, Image: req.Image}
}

// pushData flattens the request's data map to the string-only payload FCM
// accepts and stamps the notification type for client-side routing.
func (s *NotificationService) pushData(req DispatchRequest) map[string]string {
	out := make(map[string]string, len(req.Data)+1)
	for k, v := range req.Data {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			out[k] = fmt.Sprintf("%d", val)
		case uint:
			out[k] = fmt.Sprintf("%d", val)
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	out["type"] = req.Type
	return out
}

func mustJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
