package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const deviceTokenTTL = 60 * 24 * time.Hour

// DeviceTokenStore keeps the latest FCM token per role and user in Redis.
type DeviceTokenStore struct {
	client *redis.Client
}

func NewDeviceTokenStore(client *redis.Client) *DeviceTokenStore {
	return &DeviceTokenStore{client: client}
}

func tokenKey(role, userID string) string {
	return fmt.Sprintf("fcm:%s:%s", role, userID)
}

func (s *DeviceTokenStore) Set(ctx context.Context, role, userID, token string) error {
	if token == "" {
		return errors.New("empty device token")
	}
	return s.client.Set(ctx, tokenKey(role, userID), token, deviceTokenTTL).Err()
}

func (s *DeviceTokenStore) Get(ctx context.Context, role, userID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKey(role, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPushToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read device token: %w", err)
	}
	return token, nil
}
