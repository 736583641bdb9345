package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/db"
	"github.com/Devixx/carepoint-back/pkg/pagination"
)

func newPGRepo(t *testing.T) (pgxmock.PgxPoolIface, Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewRepoPG(mock)
}

var apptColumns = []string{"id", "doctor_id", "patient_id", "start_time", "end_time", "status",
	"type", "title", "description", "notes", "fee", "created_at", "updated_at"}

func appointmentRows(appts ...*Appointment) *pgxmock.Rows {
	rows := pgxmock.NewRows(apptColumns)
	for _, a := range appts {
		rows.AddRow(a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, string(a.Status),
			a.Type, a.Title, a.Description, a.Notes, a.Fee, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

var listedColumns = append(append([]string{}, apptColumns...),
	"doctor_first_name", "doctor_last_name", "doctor_email", "doctor_phone", "doctor_specialty",
	"patient_first_name", "patient_last_name", "patient_email", "patient_phone")

// listedRows adds the joined doctor and patient columns of the listing queries.
func listedRows(appts ...*Appointment) *pgxmock.Rows {
	specialty := "Cardiology"
	rows := pgxmock.NewRows(listedColumns)
	for _, a := range appts {
		rows.AddRow(a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, string(a.Status),
			a.Type, a.Title, a.Description, a.Notes, a.Fee, a.CreatedAt, a.UpdatedAt,
			"Sarah", "Johnson", "dr.sarah@carepoint.lu", nil, &specialty,
			"John", "Smith", "john.smith@example.com", nil)
	}
	return rows
}

func expectGuard(mock pgxmock.PgxPoolIface, a *Appointment, taken bool) {
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs(a.DoctorID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(a.DoctorID, a.StartTime, a.EndTime, a.ID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(taken))
}

func TestRepoPG_Create(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectGuard(mock, a, false)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), a.DoctorID, a.PatientID, a.StartTime, a.EndTime, "pending",
			"consultation", "Checkup", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if !a.CreatedAt.Equal(created) {
		t.Errorf("expected created_at from RETURNING, got %s", a.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_Create_Overlap(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()

	mock.ExpectBegin()
	expectGuard(mock, a, true)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), a)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "time slot is already booked" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_Create_CancelledSkipsOverlapCheck(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	a.Status = StatusCancelled
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs(a.DoctorID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), a.DoctorID, a.PatientID, a.StartTime, a.EndTime, "cancelled",
			"consultation", "Checkup", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_Create_UnknownPatient(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()

	mock.ExpectBegin()
	expectGuard(mock, a, false)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: db.ForeignKeyViolation, ConstraintName: "appointments_patient_id_fkey"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), a)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if a.ID != uuid.Nil {
		t.Error("failed insert must not leave an id behind")
	}
}

func TestRepoPG_GetByID(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	a.ID = uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE id = \$1`).
		WithArgs(a.ID).
		WillReturnRows(appointmentRows(a))

	got, err := repo.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != a.ID || got.Status != StatusPending || got.Doctor != nil {
		t.Errorf("unexpected appointment: %+v", got)
	}
}

func TestRepoPG_GetByID_NotFound(t *testing.T) {
	mock, repo := newPGRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepoPG_Update_RecheckExcludesSelf(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	a.ID = uuid.New()
	updated := time.Now()

	mock.ExpectBegin()
	expectGuard(mock, a, false)
	mock.ExpectQuery(`UPDATE appointments SET`).
		WithArgs(a.ID, a.StartTime, a.EndTime, "pending", "consultation", "Checkup",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), a, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.UpdatedAt.Equal(updated) {
		t.Errorf("expected updated_at from RETURNING, got %s", a.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_Update_WithoutRecheck(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	a.ID = uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE appointments SET`).
		WithArgs(a.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	if err := repo.Update(context.Background(), a, false); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_Delete(t *testing.T) {
	mock, repo := newPGRepo(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM appointments WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepoPG_ListByPatient_Filters(t *testing.T) {
	mock, repo := newPGRepo(t)
	patientID := uuid.New()
	a := validAppointment()
	a.PatientID = patientID
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	p := ListParams{
		Params: pagination.Params{Page: 2, Limit: 5, Offset: 5},
		Sort:   "created_at",
		Order:  "DESC",
		Start:  &start,
		Status: StatusConfirmed,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments a WHERE a\.patient_id = \$1 AND a\.start_time >= \$2 AND a\.status = \$3`).
		WithArgs(patientID, start, "confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`JOIN users d ON d\.id = a\.doctor_id\s+JOIN patients p ON p\.id = a\.patient_id WHERE a\.patient_id = \$1 AND a\.start_time >= \$2 AND a\.status = \$3 ORDER BY a\.created_at DESC, a\.id LIMIT \$4 OFFSET \$5`).
		WithArgs(patientID, start, "confirmed", 5, 5).
		WillReturnRows(listedRows(a))

	items, total, err := repo.ListByPatient(context.Background(), patientID, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 || len(items) != 1 {
		t.Errorf("expected 1 of 6, got %d of %d", len(items), total)
	}
	if items[0].Status != StatusPending {
		t.Errorf("status not scanned: %q", items[0].Status)
	}
	doc := items[0].Doctor
	if doc == nil || doc.ID != a.DoctorID || doc.LastName != "Johnson" || doc.Specialty == nil || *doc.Specialty != "Cardiology" {
		t.Errorf("doctor summary not scanned: %+v", doc)
	}
	if pat := items[0].Patient; pat == nil || pat.ID != patientID || pat.Email != "john.smith@example.com" {
		t.Errorf("patient summary not scanned: %+v", pat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepoPG_ListByDoctor_Defaults(t *testing.T) {
	mock, repo := newPGRepo(t)
	doctorID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments a WHERE a\.doctor_id = \$1$`).
		WithArgs(doctorID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY a\.start_time ASC, a\.id LIMIT \$2 OFFSET \$3`).
		WithArgs(doctorID, 10, 0).
		WillReturnRows(listedRows())

	items, total, err := repo.ListByDoctor(context.Background(), doctorID, ListParams{Params: pagination.Params{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected empty page, got %d of %d", len(items), total)
	}
}

func TestRepoPG_ListBlockingInRange(t *testing.T) {
	mock, repo := newPGRepo(t)
	doctorID := uuid.New()
	start := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	mock.ExpectQuery(`SELECT start_time, end_time, status FROM appointments\s+WHERE doctor_id = \$1 AND status <> 'cancelled'`).
		WithArgs(doctorID, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"start_time", "end_time", "status"}).
			AddRow(nineAM, halfPast, "confirmed"))

	slots, err := repo.ListBlockingInRange(context.Background(), doctorID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || !slots[0].StartTime.Equal(nineAM) || slots[0].Status != "confirmed" {
		t.Errorf("unexpected slots: %+v", slots)
	}
}

func TestRepoPG_ListForDay(t *testing.T) {
	mock, repo := newPGRepo(t)
	a := validAppointment()
	start := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	mock.ExpectQuery(`WHERE a\.doctor_id = \$1 AND a\.start_time >= \$2 AND a\.start_time <= \$3\s+ORDER BY a\.start_time`).
		WithArgs(a.DoctorID, start, end).
		WillReturnRows(listedRows(a))

	items, err := repo.ListForDay(context.Background(), a.DoctorID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Checkup" {
		t.Errorf("unexpected items: %+v", items)
	}
}
