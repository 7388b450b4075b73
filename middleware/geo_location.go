package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"beautycita/models"

	"go.uber.org/zap"
)

// ErrNoPublicIP is returned when the request context carries no routable client IP.
var ErrNoPublicIP = errors.New("no public client IP")

// GeoLocation represents the geolocation information for an IP.
type GeoLocation struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Country   string  `json:"country_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Error     bool    `json:"error"`
	Reason    string  `json:"reason"`
}

// IPLocator resolves approximate coordinates for the client IP found in the context.
// It satisfies booking.Locator.
type IPLocator struct {
	urlFormat string
	client    *http.Client
	logger    *zap.Logger

	mu    sync.RWMutex
	cache map[string]models.GeoPoint
}

// NewIPLocator queries urlFormat (with one %s for the IP), e.g. "https://ipapi.co/%s/json/".
func NewIPLocator(urlFormat string, timeout time.Duration, logger *zap.Logger) *IPLocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPLocator{
		urlFormat: urlFormat,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		cache:     make(map[string]models.GeoPoint),
	}
}

// isPrivateIP checks if an IP is private or loopback.
func isPrivateIP(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return true
	}
	return parsedIP.IsPrivate() || parsedIP.IsLoopback() || parsedIP.IsUnspecified() || parsedIP.IsLinkLocalUnicast()
}

func (l *IPLocator) Locate(ctx context.Context) (models.GeoPoint, error) {
	ip := ClientIPFromContext(ctx)
	if ip == "" || isPrivateIP(ip) {
		return models.GeoPoint{}, ErrNoPublicIP
	}

	l.mu.RLock()
	p, ok := l.cache[ip]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(l.urlFormat, ip), nil)
	if err != nil {
		return models.GeoPoint{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to query geolocation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.GeoPoint{}, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var geo GeoLocation
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return models.GeoPoint{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if geo.Error {
		return models.GeoPoint{}, fmt.Errorf("geolocation API error: %s", geo.Reason)
	}
	if geo.Latitude == 0 && geo.Longitude == 0 {
		return models.GeoPoint{}, errors.New("geolocation API returned no coordinates")
	}

	p = models.GeoPoint{Lat: geo.Latitude, Lng: geo.Longitude}
	l.mu.Lock()
	l.cache[ip] = p
	l.mu.Unlock()
	l.logger.Debug("Geolocation retrieved from external API", zap.String("ip", ip), zap.String("city", geo.City))
	return p, nil
}
