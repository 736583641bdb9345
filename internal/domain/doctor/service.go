package doctor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

// Invalidator drops cached schedule data after a settings change.
type Invalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo      Repository
	schedules availability.ScheduleStore
	cache     Invalidator
	logger    zerolog.Logger
}

// NewService wires the repository with an optional cache. When cache is nil
// schedule lookups go straight to the repository.
func NewService(repo Repository, cache *CachedScheduleStore, logger zerolog.Logger) *Service {
	s := &Service{repo: repo, schedules: repo, logger: logger}
	if cache != nil {
		s.schedules = cache
		s.cache = cache
	}
	return s
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, f Filter) ([]*Doctor, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Doctor{}
	}
	return items, nil
}

func (s *Service) GetSettings(ctx context.Context, id uuid.UUID) (*Settings, error) {
	return s.repo.GetSettings(ctx, id)
}

// UpdateSettings validates and stores the supplied sections, then returns
// the full settings as persisted.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, update *Settings) (*Settings, error) {
	if update == nil || update.IsEmpty() {
		return nil, apperr.Validation("no settings supplied")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSettings(ctx, id, update); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("doctor_id", id.String()).Msg("schedule cache not invalidated")
		}
	}
	return s.repo.GetSettings(ctx, id)
}

// GetScheduleConfig serves the availability service, through the cache when
// one is configured.
func (s *Service) GetScheduleConfig(ctx context.Context, id uuid.UUID) (*availability.ScheduleConfig, error) {
	return s.schedules.GetScheduleConfig(ctx, id)
}
