package utils

import (
	"beautycita/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// RealtimeClient carries pub/sub fan-out and live-location state.
	RealtimeClient *redis.Client
)

func newRedisClient(db int, label string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", label, err)
	}
	return client
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitRealtime initializes the Redis client used by the realtime bus and tracking.
func InitRealtime() {
	RealtimeClient = newRedisClient(config.AppConfig.RedisRealtimeDB, "Realtime")
}

// GetRealtimeClient returns the realtime Redis client.
func GetRealtimeClient() *redis.Client {
	if RealtimeClient == nil {
		InitRealtime()
	}
	return RealtimeClient
}
