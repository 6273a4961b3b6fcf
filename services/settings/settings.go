package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	settingsRepo "servihub/database/repository/settings"
	"servihub/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	cacheKey = "settings:pricing"
	cacheTTL = 5 * time.Minute
)

// Source hands out pricing-settings snapshots. The pricing calculator only
// ever receives a snapshot captured per call; updates go through Update and
// propagate to later calls via cache invalidation, never to in-flight work.
type Source interface {
	Current(ctx context.Context) (models.PricingSettings, error)
	Update(ctx context.Context, settings models.PricingSettings) error
}

// DefaultSource implements Source with a mongo-backed document and a redis
// snapshot cache.
type DefaultSource struct {
	Repo   settingsRepo.SettingsRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

func NewDefaultSource(repo settingsRepo.SettingsRepository, cache *redis.Client, logger *zap.Logger) *DefaultSource {
	return &DefaultSource{Repo: repo, Cache: cache, Logger: logger}
}

// Current returns a settings snapshot, preferring the cache. A cache miss or
// a stale decode falls through to the store.
func (s *DefaultSource) Current(ctx context.Context) (models.PricingSettings, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached models.PricingSettings
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			s.Logger.Warn("discarding undecodable settings cache entry")
		}
	}

	stored, err := s.Repo.Get(ctx)
	if err != nil {
		return models.PricingSettings{}, fmt.Errorf("failed to load pricing settings: %w", err)
	}
	s.cache(ctx, *stored)
	return *stored, nil
}

// Update writes through to the store and refreshes the cache.
func (s *DefaultSource) Update(ctx context.Context, settings models.PricingSettings) error {
	if err := s.Repo.Update(ctx, settings); err != nil {
		return err
	}
	s.cache(ctx, settings)
	s.Logger.Info("pricing settings updated",
		zap.Float64("standardCommissionPct", settings.StandardCommissionPct),
		zap.Float64("weekendMarkupPct", settings.WeekendMarkupPct))
	return nil
}

func (s *DefaultSource) cache(ctx context.Context, settings models.PricingSettings) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
		s.Logger.Warn("failed to cache pricing settings", zap.Error(err))
	}
}

// StaticSource is a Source pinned to one snapshot, for tests.
type StaticSource struct {
	Settings models.PricingSettings
}

func (s *StaticSource) Current(ctx context.Context) (models.PricingSettings, error) {
	return s.Settings, nil
}

func (s *StaticSource) Update(ctx context.Context, settings models.PricingSettings) error {
	s.Settings = settings
	return nil
}
