package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

// Doctor maps to the users table. Staff accounts share the table; only rows
// with role "doctor" are exposed by this package.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Role      string    `db:"role" json:"role"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Profile struct {
	Specialty *string `json:"specialty,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type ConsultationType struct {
	Type     string   `json:"type"`
	Duration int      `json:"duration"`
	Fee      *float64 `json:"fee,omitempty"`
}

type AppointmentSettings struct {
	DefaultDuration    int                `json:"defaultDuration"`
	DefaultFee         *float64           `json:"defaultFee,omitempty"`
	ConsultationTypes  []ConsultationType `json:"consultationTypes,omitempty"`
	TimeSlotInterval   *int               `json:"timeSlotInterval,omitempty"`
	AdvanceBookingDays *int               `json:"advanceBookingDays,omitempty"`
	SameDayBooking     *bool              `json:"sameDayBooking,omitempty"`
}

// Settings is both the GET response and the PATCH body of
// /doctor/settings. In an update a nil section is left unchanged.
type Settings struct {
	Profile             *Profile                      `json:"profile,omitempty"`
	WorkingHours        []availability.WorkingHours   `json:"workingHours"`
	AppointmentSettings *AppointmentSettings          `json:"appointmentSettings,omitempty"`
	Vacations           []availability.VacationPeriod `json:"vacations"`
}

// Filter narrows the doctor directory. Both fields match case-insensitively.
type Filter struct {
	Specialty string
	Search    string
}

func (a *AppointmentSettings) Validate() error {
	if a.DefaultDuration < 5 {
		return apperr.Validation("defaultDuration must be at least 5 minutes")
	}
	if a.DefaultFee != nil && *a.DefaultFee < 0 {
		return apperr.Validation("defaultFee must not be negative")
	}
	for _, ct := range a.ConsultationTypes {
		if ct.Type == "" {
			return apperr.Validation("consultation type name is required")
		}
		if ct.Duration < 5 {
			return apperr.Validation("consultation type %q duration must be at least 5 minutes", ct.Type)
		}
		if ct.Fee != nil && *ct.Fee < 0 {
			return apperr.Validation("consultation type %q fee must not be negative", ct.Type)
		}
	}
	if a.TimeSlotInterval != nil && *a.TimeSlotInterval < 5 {
		return apperr.Validation("timeSlotInterval must be at least 5 minutes")
	}
	if a.AdvanceBookingDays != nil && *a.AdvanceBookingDays < 1 {
		return apperr.Validation("advanceBookingDays must be at least 1")
	}
	return nil
}

// SlotInterval is the configured grid step, or the default when unset.
func (a *AppointmentSettings) SlotInterval() int {
	if a == nil || a.TimeSlotInterval == nil {
		return availability.DefaultSlotInterval
	}
	return *a.TimeSlotInterval
}

// Validate checks every supplied section of an update.
func (s *Settings) Validate() error {
	if s.WorkingHours != nil {
		if err := availability.ValidateWeek(s.WorkingHours); err != nil {
			return err
		}
	}
	if s.AppointmentSettings != nil {
		if err := s.AppointmentSettings.Validate(); err != nil {
			return err
		}
	}
	for _, v := range s.Vacations {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether an update carries no section at all.
func (s *Settings) IsEmpty() bool {
	return s.Profile == nil && s.WorkingHours == nil && s.AppointmentSettings == nil && s.Vacations == nil
}
