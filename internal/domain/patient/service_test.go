package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
	lastList ListParams
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) emailTaken(email string, except uuid.UUID) bool {
	for _, p := range m.patients {
		if p.Email == email && p.ID != except {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.emailTaken(p.Email, uuid.Nil) {
		return apperr.Conflict("a patient with email %s already exists", p.Email)
	}
	p.ID = uuid.New()
	p.IsActive = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, patch *Patch) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	if patch.Email != nil && m.emailTaken(*patch.Email, id) {
		return nil, apperr.Conflict("a patient with email %s already exists", *patch.Email)
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	if patch.Address != nil {
		p.Address = patch.Address
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return apperr.NotFound("patient %s not found", id)
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, p ListParams) ([]*Patient, int, error) {
	m.lastList = p
	var items []*Patient
	for _, pt := range m.patients {
		if pt.DoctorID != nil && *pt.DoctorID == doctorID {
			cp := *pt
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func register(t *testing.T, svc *Service, doctorID uuid.UUID, email string) *Patient {
	t.Helper()
	p := &Patient{FirstName: "Marie", LastName: "Curie", Email: email}
	if err := svc.Register(context.Background(), doctorID, p); err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService()
	doctorID := uuid.New()

	p := register(t, svc, doctorID, " Marie@Example.com ")
	if p.ID == uuid.Nil || p.DoctorID == nil || *p.DoctorID != doctorID {
		t.Fatalf("patient not assigned to doctor: %+v", p)
	}
	if p.Email != "marie@example.com" {
		t.Errorf("email not normalized: %q", p.Email)
	}

	dup := &Patient{FirstName: "Other", LastName: "Person", Email: "MARIE@example.com"}
	if err := svc.Register(context.Background(), uuid.New(), dup); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}

	bad := &Patient{FirstName: "No", Email: "no@example.com"}
	if err := svc.Register(context.Background(), doctorID, bad); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_OwnershipHidesOtherDoctorsPatients(t *testing.T) {
	svc, _ := newTestService()
	owner, other := uuid.New(), uuid.New()
	p := register(t, svc, owner, "marie@example.com")
	ctx := context.Background()

	if _, err := svc.Get(ctx, owner, p.ID); err != nil {
		t.Fatalf("owner should see patient: %v", err)
	}
	if _, err := svc.Get(ctx, other, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for other doctor, got %v", err)
	}
	phone := "123"
	if _, err := svc.Update(ctx, other, p.ID, &Patch{Phone: &phone}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found on update by other doctor, got %v", err)
	}
	if err := svc.Delete(ctx, other, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found on delete by other doctor, got %v", err)
	}
	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()
	doctorID := uuid.New()
	p := register(t, svc, doctorID, "marie@example.com")
	ctx := context.Background()

	if _, err := svc.Update(ctx, doctorID, p.ID, &Patch{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for empty patch, got %v", err)
	}

	name := "  Maria "
	got, err := svc.Update(ctx, doctorID, p.ID, &Patch{FirstName: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != "Maria" {
		t.Errorf("expected trimmed name, got %q", got.FirstName)
	}
}

func TestService_List(t *testing.T) {
	svc, repo := newTestService()
	doctorID := uuid.New()
	register(t, svc, doctorID, "a@example.com")
	register(t, svc, doctorID, "b@example.com")
	register(t, svc, uuid.New(), "c@example.com")

	page, err := svc.List(context.Background(), doctorID, NewListParams(pageOf(1, 10), "curie", "", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Meta.Total != 2 || len(page.Items) != 2 {
		t.Errorf("expected 2 patients, got %+v", page.Meta)
	}
	if repo.lastList.Search != "curie" {
		t.Errorf("search not forwarded: %+v", repo.lastList)
	}
}

func TestService_UpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	p := register(t, svc, uuid.New(), "marie@example.com")
	ctx := context.Background()

	email := "new@example.com"
	if _, err := svc.UpdateProfile(ctx, p.ID, &Patch{Email: &email}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected email change to be rejected, got %v", err)
	}

	addr := "1 Rue de la Gare"
	got, err := svc.UpdateProfile(ctx, p.ID, &Patch{Address: &addr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Address == nil || *got.Address != addr {
		t.Errorf("address not updated: %+v", got)
	}

	if _, err := svc.Profile(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown patient, got %v", err)
	}
}
