package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context, f Filter) ([]*Doctor, error)
	GetSettings(ctx context.Context, id uuid.UUID) (*Settings, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, s *Settings) error
	GetScheduleConfig(ctx context.Context, id uuid.UUID) (*availability.ScheduleConfig, error)
}
