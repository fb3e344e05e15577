package service

import (
	"context"
	"sync"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchLimit is the provider's per-call token cap for multicast sends.
const fcmBatchLimit = 500

const defaultClickAction = "FLUTTER_NOTIFICATION_CLICK"

const errPushDisabled = "push notifications are not configured"

// PushNotification is the human-visible part of a push payload.
type PushNotification struct {
	Title string
	Body  string
	Image string
}

// PushResult is the normalized per-token outcome of one provider call.
// Error carries the provider's message verbatim so upstream classification
// by IsInvalidTokenError keeps working.
type PushResult struct {
	Token     string `json:"token,omitempty"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MulticastResult aggregates a batched multi-token send. Results cover every
// input token exactly once; their order may differ from the input.
type MulticastResult struct {
	Success      bool         `json:"success"`
	SuccessCount int          `json:"success_count"`
	FailureCount int          `json:"failure_count"`
	Results      []PushResult `json:"results"`
}

// TopicResult is the outcome of a topic-addressed send.
type TopicResult struct {
	Success   bool   `json:"success"`
	Topic     string `json:"topic"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PushSender is the narrow surface the orchestrator and token service need
// from the push provider. FCMService implements it; tests substitute fakes.
type PushSender interface {
	Enabled() bool
	SendToToken(ctx context.Context, token string, n PushNotification, data map[string]string) PushResult
	SendToTokens(ctx context.Context, tokens []string, n PushNotification, data map[string]string) MulticastResult
	SendToTopic(ctx context.Context, topic string, n PushNotification, data map[string]string) TopicResult
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (successCount, failureCount int)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (successCount, failureCount int)
}

// FCMService sends push notifications via Firebase Cloud Messaging. A service
// without an initialized client is a normal operating mode (push disabled):
// every method returns structured success=false results instead of erroring.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates the FCM service. Initialization failures leave the
// service in disabled mode rather than failing startup.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return &FCMService{}
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		logger.Errorf("[FCM] init Firebase app: %v", err)
		return &FCMService{}
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Errorf("[FCM] get Messaging client: %v", err)
		return &FCMService{}
	}
	return &FCMService{client: client}
}

func (s *FCMService) Enabled() bool {
	return s != nil && s.client != nil
}

// withDefaults copies the data payload and injects the click action and a
// "type" key so clients can route the notification without inspecting the
// body.
func withDefaults(data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	if out["type"] == "" {
		out["type"] = domain.NotificationTypeGeneral
	}
	if out["click_action"] == "" {
		out["click_action"] = defaultClickAction
	}
	return out
}

func buildNotification(n PushNotification) *messaging.Notification {
	return &messaging.Notification{
		Title:    n.Title,
		Body:     n.Body,
		ImageURL: n.Image,
	}
}

func androidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:       "default",
			ClickAction: defaultClickAction,
		},
	}
}

func apnsConfig() *messaging.APNSConfig {
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: "default"},
		},
	}
}

// SendToToken sends one push to one device token.
func (s *FCMService) SendToToken(ctx context.Context, token string, n PushNotification, data map[string]string) PushResult {
	if !s.Enabled() {
		return PushResult{Token: token, Success: false, Error: errPushDisabled}
	}
	msg := &messaging.Message{
		Token:        token,
		Notification: buildNotification(n),
		Data:         withDefaults(data),
		Android:      androidConfig(),
		APNS:         apnsConfig(),
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		logger.Errorf("[FCM] send to token failed: %v", err)
		return PushResult{Token: token, Success: false, Error: err.Error()}
	}
	return PushResult{Token: token, Success: true, MessageID: id}
}

// SendToTokens sends to many tokens, chunked at the provider's per-call
// limit. Chunks go out concurrently; all results are collected before
// returning, one per input token.
func (s *FCMService) SendToTokens(ctx context.Context, tokens []string, n PushNotification, data map[string]string) MulticastResult {
	if len(tokens) == 0 {
		return MulticastResult{Success: true, Results: []PushResult{}}
	}
	if !s.Enabled() {
		results := make([]PushResult, 0, len(tokens))
		for _, t := range tokens {
			results = append(results, PushResult{Token: t, Success: false, Error: errPushDisabled})
		}
		return MulticastResult{Success: false, FailureCount: len(tokens), Results: results}
	}

	payload := withDefaults(data)
	chunks := chunkTokens(tokens, fcmBatchLimit)

	var mu sync.Mutex
	var wg sync.WaitGroup
	out := MulticastResult{Success: true}
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()
			results := s.sendChunk(ctx, chunk, n, payload)
			mu.Lock()
			for _, r := range results {
				if r.Success {
					out.SuccessCount++
				} else {
					out.FailureCount++
				}
			}
			out.Results = append(out.Results, results...)
			mu.Unlock()
		}(chunk)
	}
	wg.Wait()
	return out
}

func (s *FCMService) sendChunk(ctx context.Context, tokens []string, n PushNotification, data map[string]string) []PushResult {
	msg := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: buildNotification(n),
		Data:         data,
		Android:      androidConfig(),
		APNS:         apnsConfig(),
	}
	resp, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		// Call-level failure: every token in the chunk failed the same way.
		logger.Errorf("[FCM] multicast send failed: %v", err)
		results := make([]PushResult, 0, len(tokens))
		for _, t := range tokens {
			results = append(results, PushResult{Token: t, Success: false, Error: err.Error()})
		}
		return results
	}
	results := make([]PushResult, 0, len(tokens))
	for i, r := range resp.Responses {
		pr := PushResult{Token: tokens[i], Success: r.Success, MessageID: r.MessageID}
		if r.Error != nil {
			pr.Error = r.Error.Error()
		}
		results = append(results, pr)
	}
	return results
}

// SendToTopic sends one push addressed by topic name.
func (s *FCMService) SendToTopic(ctx context.Context, topic string, n PushNotification, data map[string]string) TopicResult {
	if !s.Enabled() {
		return TopicResult{Topic: topic, Success: false, Error: errPushDisabled}
	}
	msg := &messaging.Message{
		Topic:        topic,
		Notification: buildNotification(n),
		Data:         withDefaults(data),
		Android:      androidConfig(),
		APNS:         apnsConfig(),
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		logger.Errorf("[FCM] send to topic %q failed: %v", topic, err)
		return TopicResult{Topic: topic, Success: false, Error: err.Error()}
	}
	return TopicResult{Topic: topic, Success: true, MessageID: id}
}

func (s *FCMService) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (int, int) {
	if !s.Enabled() || len(tokens) == 0 {
		return 0, len(tokens)
	}
	resp, err := s.client.SubscribeToTopic(ctx, tokens, topic)
	if err != nil {
		logger.Errorf("[FCM] subscribe %d token(s) to %q: %v", len(tokens), topic, err)
		return 0, len(tokens)
	}
	return resp.SuccessCount, resp.FailureCount
}

func (s *FCMService) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (int, int) {
	if !s.Enabled() || len(tokens) == 0 {
		return 0, len(tokens)
	}
	resp, err := s.client.UnsubscribeFromTopic(ctx, tokens, topic)
	if err != nil {
		logger.Errorf("[FCM] unsubscribe %d token(s) from %q: %v", len(tokens), topic, err)
		return 0, len(tokens)
	}
	return resp.SuccessCount, resp.FailureCount
}

// chunkTokens splits tokens into slices of at most size elements.
func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for len(tokens) > size {
		chunks = append(chunks, tokens[:size])
		tokens = tokens[size:]
	}
	if len(tokens) > 0 {
		chunks = append(chunks, tokens)
	}
	return chunks
}
