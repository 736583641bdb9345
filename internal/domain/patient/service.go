package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/pkg/pagination"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register creates p as a patient of doctorID.
func (s *Service) Register(ctx context.Context, doctorID uuid.UUID, p *Patient) error {
	p.DoctorID = &doctorID
	p.normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().
		Str("patient_id", p.ID.String()).
		Str("doctor_id", doctorID.String()).
		Msg("patient registered")
	return nil
}

// Get returns a patient registered by doctorID. Patients of other doctors
// are reported as not found.
func (s *Service) Get(ctx context.Context, doctorID, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID == nil || *p.DoctorID != doctorID {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, doctorID, id uuid.UUID, patch *Patch) (*Patient, error) {
	if _, err := s.Get(ctx, doctorID, id); err != nil {
		return nil, err
	}
	return s.update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, doctorID, id uuid.UUID) error {
	if _, err := s.Get(ctx, doctorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("patient_id", id.String()).
		Str("doctor_id", doctorID.String()).
		Msg("patient deleted")
	return nil
}

func (s *Service) List(ctx context.Context, doctorID uuid.UUID, p ListParams) (*pagination.Page[*Patient], error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, p)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, p.Params), nil
}

// Profile returns the signed-in patient's own record.
func (s *Service) Profile(ctx context.Context, patientID uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, patientID)
}

// UpdateProfile lets a patient edit their own record. The email is the login
// identity and stays fixed here.
func (s *Service) UpdateProfile(ctx context.Context, patientID uuid.UUID, patch *Patch) (*Patient, error) {
	if patch != nil && patch.Email != nil {
		return nil, apperr.Validation("email cannot be changed from the profile")
	}
	return s.update(ctx, patientID, patch)
}

func (s *Service) update(ctx context.Context, id uuid.UUID, patch *Patch) (*Patient, error) {
	if patch == nil {
		return nil, apperr.Validation("no changes supplied")
	}
	patch.normalize()
	if patch.IsEmpty() {
		return nil, apperr.Validation("no changes supplied")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}
