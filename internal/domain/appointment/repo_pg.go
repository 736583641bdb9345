package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/db"
)

const conflictMessage = "time slot is already booked"

type repoPG struct{ pool db.Pool }

func NewRepoPG(pool db.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.ConnFromContext(ctx, r.pool)
}

const apptCols = `id, doctor_id, patient_id, start_time, end_time, status, type, title,
	description, notes, fee, created_at, updated_at`

// listedSelect reads appointments with their doctor and patient summaries.
// Filters and ordering on it use the a. prefix.
const listedSelect = `SELECT a.id, a.doctor_id, a.patient_id, a.start_time, a.end_time, a.status,
	a.type, a.title, a.description, a.notes, a.fee, a.created_at, a.updated_at,
	d.first_name, d.last_name, d.email, d.phone, d.specialty,
	p.first_name, p.last_name, p.email, p.phone
	FROM appointments a
	JOIN users d ON d.id = a.doctor_id
	JOIN patients p ON p.id = a.patient_id`

func scanListed(row pgx.Row) (*Appointment, error) {
	var (
		a          Appointment
		status     string
		doc, pat   Participant
	)
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.EndTime, &status,
		&a.Type, &a.Title, &a.Description, &a.Notes, &a.Fee, &a.CreatedAt, &a.UpdatedAt,
		&doc.FirstName, &doc.LastName, &doc.Email, &doc.Phone, &doc.Specialty,
		&pat.FirstName, &pat.LastName, &pat.Email, &pat.Phone)
	a.Status = Status(status)
	doc.ID, pat.ID = a.DoctorID, a.PatientID
	a.Doctor, a.Patient = &doc, &pat
	return &a, err
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a      Appointment
		status string
	)
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.EndTime, &status,
		&a.Type, &a.Title, &a.Description, &a.Notes, &a.Fee, &a.CreatedAt, &a.UpdatedAt)
	a.Status = Status(status)
	return &a, err
}

// guard serialises bookings of one doctor for the rest of the transaction
// and rejects a blocking appointment that overlaps another one.
func (r *repoPG) guard(ctx context.Context, a *Appointment) error {
	if _, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.DoctorID.String()); err != nil {
		return fmt.Errorf("lock doctor schedule: %w", err)
	}
	if !a.Status.IsBlocking() {
		return nil
	}

	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND status <> 'cancelled'
				AND start_time < $3 AND end_time > $2 AND id <> $4
		)`, a.DoctorID, a.StartTime, a.EndTime, a.ID).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if taken {
		return apperr.Conflict(conflictMessage)
	}
	return nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if err := r.guard(ctx, a); err != nil {
			return err
		}
		a.ID = uuid.New()
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_id, start_time, end_time, status,
				type, title, description, notes, fee)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING created_at, updated_at`,
			a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, string(a.Status),
			a.Type, a.Title, a.Description, a.Notes, a.Fee).
			Scan(&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			a.ID = uuid.Nil
			return writeError(err, a)
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment %s not found", id)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment, recheck bool) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if recheck {
			if err := r.guard(ctx, a); err != nil {
				return err
			}
		}
		err := r.conn(ctx).QueryRow(ctx, `
			UPDATE appointments SET start_time=$2, end_time=$3, status=$4, type=$5, title=$6,
				description=$7, notes=$8, fee=$9, updated_at=NOW()
			WHERE id = $1
			RETURNING updated_at`,
			a.ID, a.StartTime, a.EndTime, string(a.Status), a.Type, a.Title,
			a.Description, a.Notes, a.Fee).
			Scan(&a.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("appointment %s not found", a.ID)
			}
			return writeError(err, a)
		}
		return nil
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment %s not found", id)
	}
	return nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, p ListParams) ([]*Appointment, int, error) {
	return r.list(ctx, "doctor_id", doctorID, p)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, p ListParams) ([]*Appointment, int, error) {
	return r.list(ctx, "patient_id", patientID, p)
}

// list pages through the appointments whose owner column equals id. Sort and
// Order come from ParseListParams and are never raw user input.
func (r *repoPG) list(ctx context.Context, owner string, id uuid.UUID, p ListParams) ([]*Appointment, int, error) {
	where := fmt.Sprintf(` WHERE a.%s = $1`, owner)
	args := []interface{}{id}
	idx := 2

	if p.Start != nil {
		where += fmt.Sprintf(` AND a.start_time >= $%d`, idx)
		args = append(args, *p.Start)
		idx++
	}
	if p.End != nil {
		where += fmt.Sprintf(` AND a.start_time <= $%d`, idx)
		args = append(args, *p.End)
		idx++
	}
	if p.Status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, string(p.Status))
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	sort, order := p.Sort, p.Order
	if sort == "" {
		sort = "start_time"
	}
	if order != "DESC" {
		order = "ASC"
	}
	query := listedSelect + where +
		fmt.Sprintf(` ORDER BY a.%s %s, a.id LIMIT $%d OFFSET $%d`, sort, order, idx, idx+1)
	args = append(args, p.Limit, p.Offset)

	items, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListForDay(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]*Appointment, error) {
	return r.collect(ctx, listedSelect+`
		WHERE a.doctor_id = $1 AND a.start_time >= $2 AND a.start_time <= $3
		ORDER BY a.start_time`, doctorID, start, end)
}

func (r *repoPG) ListBlockingInRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]availability.AppointmentSlotInfo, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT start_time, end_time, status FROM appointments
		WHERE doctor_id = $1 AND status <> 'cancelled'
			AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time`, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list blocking appointments: %w", err)
	}
	defer rows.Close()

	var out []availability.AppointmentSlotInfo
	for rows.Next() {
		var s availability.AppointmentSlotInfo
		if err := rows.Scan(&s.StartTime, &s.EndTime, &s.Status); err != nil {
			return nil, fmt.Errorf("scan appointment slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) collect(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanListed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// writeError translates constraint violations raised by an insert or update.
func writeError(err error, a *Appointment) error {
	if db.IsPgError(err, db.ForeignKeyViolation) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "doctor") {
			return apperr.NotFound("doctor %s not found", a.DoctorID)
		}
		return apperr.NotFound("patient %s not found", a.PatientID)
	}
	return fmt.Errorf("write appointment: %w", err)
}
