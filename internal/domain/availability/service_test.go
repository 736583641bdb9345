package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/metrics"
)

type mockScheduleStore struct {
	configs map[uuid.UUID]*ScheduleConfig
	err     error
	calls   int
}

func (m *mockScheduleStore) GetScheduleConfig(_ context.Context, id uuid.UUID) (*ScheduleConfig, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	cfg, ok := m.configs[id]
	if !ok {
		return nil, apperr.NotFound("doctor not found")
	}
	return cfg, nil
}

type mockAppointmentSource struct {
	appts      []AppointmentSlotInfo
	err        error
	start, end time.Time
	calls      int
}

func (m *mockAppointmentSource) ListBlockingInRange(_ context.Context, _ uuid.UUID, start, end time.Time) ([]AppointmentSlotInfo, error) {
	m.calls++
	m.start, m.end = start, end
	return m.appts, m.err
}

type serviceFixture struct {
	svc      *Service
	store    *mockScheduleStore
	appts    *mockAppointmentSource
	registry *prometheus.Registry
	doctorID uuid.UUID
}

func newServiceFixture(now time.Time) *serviceFixture {
	doctorID := uuid.New()
	store := &mockScheduleStore{configs: map[uuid.UUID]*ScheduleConfig{
		doctorID: {
			DoctorID:  doctorID,
			Vacations: []VacationPeriod{{StartDate: "2025-06-10", EndDate: "2025-06-12", Reason: "Congress"}},
		},
	}}
	appts := &mockAppointmentSource{}
	reg := prometheus.NewRegistry()
	svc := NewService(store, appts, NewCalculator(clinicTZ, nil), ClockFunc(func() time.Time { return now }), metrics.NewAvailability(reg))
	return &serviceFixture{svc: svc, store: store, appts: appts, registry: reg, doctorID: doctorID}
}

func (f *serviceFixture) outcome(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "carepoint_availability_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestService_GetAvailability(t *testing.T) {
	f := newServiceFixture(earlier)
	f.appts.appts = []AppointmentSlotInfo{appt("2025-06-16", "10:00", "confirmed")}

	res, err := f.svc.GetAvailability(context.Background(), f.doctorID, "2025-06-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AvailableCount != 15 || res.BookedSlots != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	wantStart, wantEnd := DayRange(at("2025-06-16", "12:00"), clinicTZ)
	if !f.appts.start.Equal(wantStart) || !f.appts.end.Equal(wantEnd) {
		t.Errorf("expected query range %v..%v, got %v..%v", wantStart, wantEnd, f.appts.start, f.appts.end)
	}
	if got := f.outcome(t, metrics.OutcomeOK); got != 1 {
		t.Errorf("expected one ok observation, got %v", got)
	}
}

func TestService_InvalidDateSkipsIO(t *testing.T) {
	f := newServiceFixture(earlier)

	_, err := f.svc.GetAvailability(context.Background(), f.doctorID, "16-06-2025")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.store.calls != 0 || f.appts.calls != 0 {
		t.Errorf("expected no store calls, got %d/%d", f.store.calls, f.appts.calls)
	}
	if got := f.outcome(t, metrics.OutcomeInvalid); got != 1 {
		t.Errorf("expected one invalid observation, got %v", got)
	}
}

func TestService_UnknownDoctor(t *testing.T) {
	f := newServiceFixture(earlier)

	_, err := f.svc.GetAvailability(context.Background(), uuid.New(), "2025-06-16")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.appts.calls != 0 {
		t.Error("appointments must not be queried for an unknown doctor")
	}
	if got := f.outcome(t, metrics.OutcomeNotFound); got != 1 {
		t.Errorf("expected one not_found observation, got %v", got)
	}
}

func TestService_PropagatesStoreErrors(t *testing.T) {
	f := newServiceFixture(earlier)
	boom := errors.New("connection reset")
	f.appts.err = boom

	_, err := f.svc.GetAvailability(context.Background(), f.doctorID, "2025-06-16")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if got := f.outcome(t, metrics.OutcomeError); got != 1 {
		t.Errorf("expected one error observation, got %v", got)
	}
}

func TestService_Vacation(t *testing.T) {
	f := newServiceFixture(earlier)

	res, err := f.svc.GetAvailability(context.Background(), f.doctorID, "2025-06-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OnVacation || res.VacationReason != "Congress" {
		t.Errorf("expected vacation, got %+v", res)
	}
	if got := f.outcome(t, metrics.OutcomeVacation); got != 1 {
		t.Errorf("expected one vacation observation, got %v", got)
	}
}

func TestService_Today(t *testing.T) {
	// 22:30 UTC is already the next day in the clinic zone
	f := newServiceFixture(time.Date(2025, 6, 16, 22, 30, 0, 0, time.UTC))
	if got := f.svc.Today(); got != "2025-06-17" {
		t.Errorf("expected clinic date 2025-06-17, got %s", got)
	}
}

func TestService_HistogramOnlyOnSuccess(t *testing.T) {
	f := newServiceFixture(earlier)
	_, _ = f.svc.GetAvailability(context.Background(), f.doctorID, "2025-06-16")
	_, _ = f.svc.GetAvailability(context.Background(), f.doctorID, "bad")

	families, err := f.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "carepoint_availability_available_slots" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	if samples != 1 {
		t.Errorf("expected one histogram sample, got %d", samples)
	}
}
