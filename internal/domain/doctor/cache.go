package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
)

const scheduleKeyPrefix = "carepoint:schedule:"

// CachedScheduleStore is a Redis read-through cache in front of a schedule
// store. Redis failures are logged and the request falls through to next.
type CachedScheduleStore struct {
	redis  *redis.Client
	next   availability.ScheduleStore
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedScheduleStore(client *redis.Client, next availability.ScheduleStore, ttl time.Duration, logger zerolog.Logger) *CachedScheduleStore {
	return &CachedScheduleStore{redis: client, next: next, ttl: ttl, logger: logger}
}

func scheduleKey(id uuid.UUID) string {
	return scheduleKeyPrefix + id.String()
}

func (s *CachedScheduleStore) GetScheduleConfig(ctx context.Context, id uuid.UUID) (*availability.ScheduleConfig, error) {
	key := scheduleKey(id)

	data, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cfg availability.ScheduleConfig
		if err := json.Unmarshal(data, &cfg); err == nil {
			return &cfg, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable schedule cache entry")
	case !errors.Is(err, redis.Nil):
		s.logger.Warn().Err(err).Str("key", key).Msg("schedule cache read failed")
	}

	cfg, err := s.next.GetScheduleConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cfg); err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
		}
	}
	return cfg, nil
}

// Invalidate drops the cached schedule of a doctor.
func (s *CachedScheduleStore) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := s.redis.Del(ctx, scheduleKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate schedule cache: %w", err)
	}
	return nil
}
