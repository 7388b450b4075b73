package booking

import (
	"context"
	"time"

	"beautycita/models"

	"go.uber.org/zap"
)

// DefaultLocation is used whenever the client's position cannot be determined.
var DefaultLocation = models.GeoPoint{Lat: 40.7128, Lng: -74.0060}

const DefaultLocateTimeout = 10 * time.Second

// LocationResolver bounds a Locator with a timeout and falls back to a fixed point.
// Its Locate never returns an error.
type LocationResolver struct {
	Source   Locator
	Timeout  time.Duration
	Fallback models.GeoPoint
	Logger   *zap.Logger
}

// NewLocationResolver wraps src; a nil src always yields DefaultLocation.
func NewLocationResolver(src Locator, timeout time.Duration, logger *zap.Logger) *LocationResolver {
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationResolver{Source: src, Timeout: timeout, Fallback: DefaultLocation, Logger: logger}
}

func (r *LocationResolver) Locate(ctx context.Context) (models.GeoPoint, error) {
	if r.Source == nil {
		return r.Fallback, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	type result struct {
		p   models.GeoPoint
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := r.Source.Locate(ctx)
		ch <- result{p, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			r.Logger.Debug("Geolocation unavailable, using default location", zap.Error(res.err))
			return r.Fallback, nil
		}
		return res.p, nil
	case <-ctx.Done():
		r.Logger.Debug("Geolocation timed out, using default location", zap.Duration("timeout", r.Timeout))
		return r.Fallback, nil
	}
}

// ValidPoint reports whether p is a usable latitude/longitude.
func ValidPoint(p models.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
