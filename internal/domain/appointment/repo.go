package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
)

type Repository interface {
	// Create books a, failing with apperr.ErrConflict when a blocking
	// appointment of the same doctor overlaps it.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update stores a. When recheck is set the overlap check of Create runs
	// again, ignoring a itself.
	Update(ctx context.Context, a *Appointment, recheck bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, p ListParams) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, p ListParams) ([]*Appointment, int, error)
	ListForDay(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*Appointment, error)
	ListBlockingInRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]availability.AppointmentSlotInfo, error)
}
