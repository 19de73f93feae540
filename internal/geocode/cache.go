package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

const cacheTTL = 30 * 24 * time.Hour

// CachedGeocoder wraps a Geocoder with a cache-aside Redis layer. With a nil
// Redis client every lookup passes through.
type CachedGeocoder struct {
	inner Geocoder
	redis *redis.Client
}

func NewCachedGeocoder(inner Geocoder, redisClient *redis.Client) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, redis: redisClient}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*photo.Location, error) {
	if c.redis == nil {
		return c.inner.ReverseGeocode(ctx, lat, lon)
	}

	key := cacheKey(lat, lon)
	if cached, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var loc photo.Location
		if err := json.Unmarshal(cached, &loc); err == nil {
			return &loc, nil
		}
	}

	loc, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil || loc == nil {
		return loc, err
	}

	payload, err := json.Marshal(loc)
	if err == nil {
		if err := c.redis.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
			zap.L().Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return loc, nil
}

// cacheKey truncates to ~11 m so nearby photos share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("geocode:%.4f:%.4f", lat, lon)
}
