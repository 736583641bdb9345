package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create stores p, failing with apperr.ErrConflict when the email is
	// already registered.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, id uuid.UUID, patch *Patch) (*Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, p ListParams) ([]*Patient, int, error)
}
