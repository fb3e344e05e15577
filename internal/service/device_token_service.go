package service

import (
	"context"

	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"
)

// DeviceTokenService registers and unregisters push targets. Registration
// also subscribes the token to the default "all users" topic, best-effort:
// a failed subscription never fails the registration.
type DeviceTokenService struct {
	tokens       *repository.DeviceTokenRepository
	push         PushSender
	defaultTopic string
}

func NewDeviceTokenService(tokens *repository.DeviceTokenRepository, push PushSender, defaultTopic string) *DeviceTokenService {
	return &DeviceTokenService{tokens: tokens, push: push, defaultTopic: defaultTopic}
}

func (s *DeviceTokenService) Register(ctx context.Context, userID uint, token, platform, deviceID, appVersion string) error {
	if err := s.tokens.Register(userID, token, platform, deviceID, appVersion); err != nil {
		return err
	}
	if s.push != nil && s.push.Enabled() && s.defaultTopic != "" {
		if _, failed := s.push.SubscribeToTopic(ctx, []string{token}, s.defaultTopic); failed > 0 {
			logger.Warnf("[Tokens] subscribe to default topic %q failed for user %d", s.defaultTopic, userID)
		}
	}
	return nil
}

func (s *DeviceTokenService) Unregister(ctx context.Context, token string) error {
	if err := s.tokens.Unregister(token); err != nil {
		return err
	}
	if s.push != nil && s.push.Enabled() && s.defaultTopic != "" {
		if _, failed := s.push.UnsubscribeFromTopic(ctx, []string{token}, s.defaultTopic); failed > 0 {
			logger.Warnf("[Tokens] unsubscribe from default topic %q failed", s.defaultTopic)
		}
	}
	return nil
}
