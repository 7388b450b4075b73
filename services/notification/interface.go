package notification

import (
	"context"
	"errors"
	"fmt"

	"beautycita/models"
	"beautycita/services/realtime"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

var ErrNoPushToken = errors.New("no push token registered")

// NotificationService delivers in-app notices over the socket and FCM pushes.
type NotificationService interface {
	// Notify shows notice to userID on every connected socket.
	Notify(ctx context.Context, userID string, notice models.Notice)
	SendClientPushNotification(ctx context.Context, clientID, title, body string, data map[string]string) error
	SendStylistPushNotification(ctx context.Context, stylistID, title, body string, data map[string]string) error
	RegisterDevice(ctx context.Context, role, userID, token string) error
}

// Pusher is the part of *messaging.Client the service uses.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// StylistTokens resolves the token stored on a stylist profile.
type StylistTokens interface {
	GetByID(ctx context.Context, id string) (*models.Stylist, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	bus      realtime.Bus
	tokens   *DeviceTokenStore
	stylists StylistTokens
	push     Pusher
	logger   *zap.Logger
}

// NewDefaultNotificationService wires the service. A nil push disables FCM, and a
// nil stylists skips the profile token fallback.
func NewDefaultNotificationService(bus realtime.Bus, tokens *DeviceTokenStore, stylists StylistTokens, push Pusher, logger *zap.Logger) (*DefaultNotificationService, error) {
	if bus == nil || tokens == nil {
		return nil, fmt.Errorf("notification service initialization error: bus or token store is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{bus: bus, tokens: tokens, stylists: stylists, push: push, logger: logger}, nil
}

func (s *DefaultNotificationService) Notify(ctx context.Context, userID string, notice models.Notice) {
	ev, err := realtime.NewEvent(models.EventNotification, notice)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, realtime.UserTopic(userID), ev); err != nil {
		s.logger.Warn("Failed to publish notice", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) RegisterDevice(ctx context.Context, role, userID, token string) error {
	return s.tokens.Set(ctx, role, userID, token)
}

func (s *DefaultNotificationService) SendClientPushNotification(ctx context.Context, clientID, title, body string, data map[string]string) error {
	token, err := s.tokens.Get(ctx, models.ReminderTargetClient, clientID)
	if err != nil {
		return fmt.Errorf("SendClientPushNotification: client %s: %w", clientID, err)
	}
	data = withRole(data, models.ReminderTargetClient)
	return s.send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	})
}

func (s *DefaultNotificationService) SendStylistPushNotification(ctx context.Context, stylistID, title, body string, data map[string]string) error {
	token, err := s.tokens.Get(ctx, models.ReminderTargetStylist, stylistID)
	if errors.Is(err, ErrNoPushToken) && s.stylists != nil {
		if st, lookupErr := s.stylists.GetByID(ctx, stylistID); lookupErr == nil && st.FCMToken != "" {
			token, err = st.FCMToken, nil
		}
	}
	if err != nil {
		return fmt.Errorf("SendStylistPushNotification: stylist %s: %w", stylistID, err)
	}

	data = withRole(data, models.ReminderTargetStylist)
	return s.send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	})
}

func (s *DefaultNotificationService) send(ctx context.Context, msg *messaging.Message) error {
	if s.push == nil {
		s.logger.Debug("Push disabled, dropping message", zap.String("type", msg.Data["type"]))
		return nil
	}
	id, err := s.push.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	s.logger.Debug("Push sent", zap.String("messageID", id))
	return nil
}

func withRole(data map[string]string, role string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	if _, ok := out["role"]; !ok {
		out["role"] = role
	}
	return out
}
