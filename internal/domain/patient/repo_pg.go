package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/db"
)

type repoPG struct{ pool db.Querier }

func NewRepoPG(pool db.Querier) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.ConnFromContext(ctx, r.pool)
}

const patientCols = `id, doctor_id, first_name, last_name, email, phone,
	to_char(date_of_birth, 'YYYY-MM-DD'), address, emergency_contact, emergency_phone,
	is_active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.DoctorID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.DateOfBirth, &p.Address, &p.EmergencyContact, &p.EmergencyPhone,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, doctor_id, first_name, last_name, email, phone, date_of_birth,
			address, emergency_contact, emergency_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7::text::date,$8,$9,$10)
		RETURNING is_active, created_at, updated_at`,
		p.ID, p.DoctorID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
		p.Address, p.EmergencyContact, p.EmergencyPhone).
		Scan(&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		p.ID = uuid.Nil
		return writeError(err, p.Email)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, id)
	}
	return p, nil
}

// Update applies the non-nil fields of patch. NULL parameters keep the
// stored value.
func (r *repoPG) Update(ctx context.Context, id uuid.UUID, patch *Patch) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			date_of_birth = COALESCE($6::text::date, date_of_birth),
			address = COALESCE($7, address),
			emergency_contact = COALESCE($8, emergency_contact),
			emergency_phone = COALESCE($9, emergency_phone),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+patientCols,
		id, patch.FirstName, patch.LastName, patch.Email, patch.Phone, patch.DateOfBirth,
		patch.Address, patch.EmergencyContact, patch.EmergencyPhone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("patient %s not found", id)
		}
		email := ""
		if patch.Email != nil {
			email = *patch.Email
		}
		return nil, writeError(err, email)
	}
	return p, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient %s not found", id)
	}
	return nil
}

// ListByDoctor pages through the doctor's patients. Search matches name,
// email or phone. Sort and Order come from NewListParams.
func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, p ListParams) ([]*Patient, int, error) {
	where := ` WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	idx := 2

	if p.Search != "" {
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)`,
			idx, idx, idx, idx)
		args = append(args, db.LikePattern(p.Search))
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	sort, order := p.Sort, p.Order
	if sort == "" {
		sort = "created_at"
	}
	if order != "ASC" {
		order = "DESC"
	}
	query := `SELECT ` + patientCols + ` FROM patients` + where +
		fmt.Sprintf(` ORDER BY %s %s, id LIMIT $%d OFFSET $%d`, sort, order, idx, idx+1)
	args = append(args, p.Limit, p.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		pt, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		items = append(items, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func notFound(err error, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("patient %s not found", id)
	}
	return fmt.Errorf("query patient: %w", err)
}

func writeError(err error, email string) error {
	switch {
	case db.IsPgError(err, db.UniqueViolation):
		return apperr.Conflict("a patient with email %s already exists", email)
	case db.IsPgError(err, db.ForeignKeyViolation):
		return apperr.NotFound("doctor not found")
	}
	return fmt.Errorf("write patient: %w", err)
}
