package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	max       int
	window    time.Duration
	lastPrune time.Time
}

func newRateLimiterStore(max int, window time.Duration) *rateLimiterStore {
	if max <= 0 {
		max = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &rateLimiterStore{limiters: make(map[string]*ipLimiter), max: max, window: window}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) > s.window {
		for k, l := range s.limiters {
			if now.Sub(l.lastSeen) > s.window {
				delete(s.limiters, k)
			}
		}
		s.lastPrune = now
	}

	l, exists := s.limiters[ip]
	if !exists {
		// max requests per window, all of them available as burst.
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(s.window/time.Duration(s.max)), s.max)}
		s.limiters[ip] = l
	}
	l.lastSeen = now
	return l.limiter
}

// RateLimitMiddleware limits requests per IP address to max per window.
func RateLimitMiddleware(max int, window time.Duration) gin.HandlerFunc {
	store := newRateLimiterStore(max, window)
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip, time.Now()).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests from this IP, please try again later."})
			return
		}
		c.Next()
	}
}
