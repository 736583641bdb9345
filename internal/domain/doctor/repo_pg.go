package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/db"
)

type repoPG struct{ pool db.Querier }

func NewRepoPG(pool db.Querier) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.ConnFromContext(ctx, r.pool)
}

const doctorCols = `id, first_name, last_name, email, phone, role, specialty, bio,
	is_active, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.Phone, &d.Role,
		&d.Specialty, &d.Bio, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM users WHERE id = $1 AND role = 'doctor'`, id))
	if err != nil {
		return nil, notFound(err, id)
	}
	return d, nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Doctor, error) {
	query := `SELECT ` + doctorCols + ` FROM users WHERE role = 'doctor'`
	var args []interface{}
	idx := 1

	if s := strings.TrimSpace(f.Specialty); s != "" {
		query += fmt.Sprintf(" AND specialty ILIKE $%d", idx)
		args = append(args, db.LikePattern(s))
		idx++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR specialty ILIKE $%d)", idx, idx, idx)
		args = append(args, db.LikePattern(s))
		idx++
	}
	query += " ORDER BY last_name, first_name"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) GetSettings(ctx context.Context, id uuid.UUID) (*Settings, error) {
	var (
		profile                   Profile
		hours, apptSettings, vacs []byte
	)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT specialty, phone, bio, working_hours, appointment_settings, vacations
		FROM users WHERE id = $1 AND role = 'doctor'`, id).
		Scan(&profile.Specialty, &profile.Phone, &profile.Bio, &hours, &apptSettings, &vacs)
	if err != nil {
		return nil, notFound(err, id)
	}

	s := &Settings{Profile: &profile}
	if err := decodeJSON(hours, &s.WorkingHours); err != nil {
		return nil, fmt.Errorf("decode working_hours: %w", err)
	}
	if err := decodeJSON(apptSettings, &s.AppointmentSettings); err != nil {
		return nil, fmt.Errorf("decode appointment_settings: %w", err)
	}
	if err := decodeJSON(vacs, &s.Vacations); err != nil {
		return nil, fmt.Errorf("decode vacations: %w", err)
	}
	if s.WorkingHours == nil {
		s.WorkingHours = []availability.WorkingHours{}
	}
	if s.Vacations == nil {
		s.Vacations = []availability.VacationPeriod{}
	}
	return s, nil
}

// UpdateSettings replaces the sections present in s. NULL parameters keep
// the stored value.
func (r *repoPG) UpdateSettings(ctx context.Context, id uuid.UUID, s *Settings) error {
	var specialty, phone, bio *string
	if s.Profile != nil {
		specialty, phone, bio = s.Profile.Specialty, s.Profile.Phone, s.Profile.Bio
	}
	hours, err := encodeJSON(s.WorkingHours != nil, s.WorkingHours)
	if err != nil {
		return err
	}
	apptSettings, err := encodeJSON(s.AppointmentSettings != nil, s.AppointmentSettings)
	if err != nil {
		return err
	}
	vacs, err := encodeJSON(s.Vacations != nil, s.Vacations)
	if err != nil {
		return err
	}

	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			specialty = COALESCE($2, specialty),
			phone = COALESCE($3, phone),
			bio = COALESCE($4, bio),
			working_hours = COALESCE($5::jsonb, working_hours),
			appointment_settings = COALESCE($6::jsonb, appointment_settings),
			vacations = COALESCE($7::jsonb, vacations),
			updated_at = NOW()
		WHERE id = $1 AND role = 'doctor'`,
		id, specialty, phone, bio, hours, apptSettings, vacs)
	if err != nil {
		return fmt.Errorf("update doctor settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor %s not found", id)
	}
	return nil
}

func (r *repoPG) GetScheduleConfig(ctx context.Context, id uuid.UUID) (*availability.ScheduleConfig, error) {
	var hours, apptSettings, vacs []byte
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT working_hours, appointment_settings, vacations
		FROM users WHERE id = $1 AND role = 'doctor'`, id).
		Scan(&hours, &apptSettings, &vacs)
	if err != nil {
		return nil, notFound(err, id)
	}

	cfg := &availability.ScheduleConfig{DoctorID: id}
	if err := decodeJSON(hours, &cfg.WorkingHours); err != nil {
		return nil, fmt.Errorf("decode working_hours: %w", err)
	}
	if err := decodeJSON(vacs, &cfg.Vacations); err != nil {
		return nil, fmt.Errorf("decode vacations: %w", err)
	}
	var settings *AppointmentSettings
	if err := decodeJSON(apptSettings, &settings); err != nil {
		return nil, fmt.Errorf("decode appointment_settings: %w", err)
	}
	cfg.SlotInterval = settings.SlotInterval()
	return cfg, nil
}

func notFound(err error, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("doctor %s not found", id)
	}
	return fmt.Errorf("query doctor: %w", err)
}

func decodeJSON(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeJSON returns nil (SQL NULL) when the section was not supplied.
func encodeJSON(present bool, v interface{}) ([]byte, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return b, nil
}
