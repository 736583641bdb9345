package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/pkg/pagination"
)

type Service struct {
	repo   Repository
	loc    *time.Location
	clock  availability.Clock
	logger zerolog.Logger
}

func NewService(repo Repository, loc *time.Location, clock availability.Clock, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = availability.SystemClock
	}
	return &Service{repo: repo, loc: loc, clock: clock, logger: logger}
}

// Location is the clinic timezone used for date-only inputs.
func (s *Service) Location() *time.Location { return s.loc }

// Create books an appointment for doctorID.
func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, a *Appointment) error {
	a.DoctorID = doctorID
	a.applyDefaults()
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("doctor_id", doctorID.String()).
		Time("start_time", a.StartTime).
		Msg("appointment booked")
	return nil
}

// Get returns an appointment owned by doctorID. Appointments of other doctors
// are reported as not found.
func (s *Service) Get(ctx context.Context, doctorID, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, doctorID, id uuid.UUID, p *Patch) (*Appointment, error) {
	a, err := s.Get(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}

	wasBlocking := a.Status.IsBlocking()
	moved := p.TimesChanged(a)
	p.Apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	// Reactivating a cancelled appointment claims its slot again.
	recheck := a.Status.IsBlocking() && (moved || !wasBlocking)
	if err := s.repo.Update(ctx, a, recheck); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, doctorID, id uuid.UUID) error {
	if _, err := s.Get(ctx, doctorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, p ListParams) (*pagination.Page[*Appointment], error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, p)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, p.Params), nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, p ListParams) (*pagination.Page[*Appointment], error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, p)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, p.Params), nil
}

// ListForDay returns the doctor's appointments on date, or today when date is
// empty, ordered by start time.
func (s *Service) ListForDay(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error) {
	if date == "" {
		date = s.clock.Now().In(s.loc).Format(availability.DateLayout)
	}
	day, err := availability.ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	start, end := availability.DayRange(day, s.loc)
	items, err := s.repo.ListForDay(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, nil
}
