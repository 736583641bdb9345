package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/metrics"
)

// ScheduleStore resolves a doctor's schedule. Unknown doctors yield an
// apperr.ErrNotFound error.
type ScheduleStore interface {
	GetScheduleConfig(ctx context.Context, doctorID uuid.UUID) (*ScheduleConfig, error)
}

// AppointmentSource lists the non-cancelled appointments of a doctor that
// start within [start, end].
type AppointmentSource interface {
	ListBlockingInRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]AppointmentSlotInfo, error)
}

type Service struct {
	schedules    ScheduleStore
	appointments AppointmentSource
	calc         *Calculator
	clock        Clock
	metrics      *metrics.Availability
}

func NewService(schedules ScheduleStore, appointments AppointmentSource, calc *Calculator, clock Clock, m *metrics.Availability) *Service {
	if clock == nil {
		clock = SystemClock
	}
	return &Service{schedules: schedules, appointments: appointments, calc: calc, clock: clock, metrics: m}
}

// Today is the current calendar date in the clinic timezone.
func (s *Service) Today() string {
	return s.clock.Now().In(s.calc.Location()).Format(DateLayout)
}

func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (res *Result, err error) {
	defer func() { s.observe(res, err) }()

	day, err := ParseDate(date, s.calc.Location())
	if err != nil {
		return nil, err
	}

	cfg, err := s.schedules.GetScheduleConfig(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	start, end := DayRange(day, s.calc.Location())
	appts, err := s.appointments.ListBlockingInRange(ctx, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return s.calc.Compute(Input{
		DoctorID:     doctorID,
		Date:         date,
		Schedule:     cfg.WorkingHours,
		Vacations:    cfg.Vacations,
		Appointments: appts,
		SlotInterval: cfg.SlotInterval,
		Now:          s.clock.Now(),
	})
}

func (s *Service) observe(res *Result, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		s.metrics.Observe(metrics.OutcomeInvalid, 0)
	case errors.Is(err, apperr.ErrNotFound):
		s.metrics.Observe(metrics.OutcomeNotFound, 0)
	case err != nil:
		s.metrics.Observe(metrics.OutcomeError, 0)
	case res.OnVacation:
		s.metrics.Observe(metrics.OutcomeVacation, 0)
	default:
		s.metrics.Observe(metrics.OutcomeOK, res.AvailableCount)
	}
}
