package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = availability.StatusCancelled
	StatusNoShow     Status = "no_show"
)

const DefaultType = "consultation"

// MaxFee is the exclusive upper bound of the NUMERIC(10,2) fee column.
const MaxFee = 1e8

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

func (s Status) Valid() bool { return validStatuses[s] }

// IsBlocking reports whether an appointment in this status occupies its slot.
func (s Status) IsBlocking() bool { return s != StatusCancelled }

type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctorId"`
	PatientID   uuid.UUID `db:"patient_id" json:"patientId"`
	StartTime   time.Time `db:"start_time" json:"startTime"`
	EndTime     time.Time `db:"end_time" json:"endTime"`
	Status      Status    `db:"status" json:"status"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	Fee         *float64  `db:"fee" json:"fee,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Filled by listings only.
	Doctor  *Participant `db:"-" json:"doctor,omitempty"`
	Patient *Participant `db:"-" json:"patient,omitempty"`
}

// Participant is the short form of the doctor or patient on an appointment.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
}

// Patch is the body of PATCH /appointments/:id. Nil fields are unchanged.
type Patch struct {
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      *Status    `json:"status"`
	Type        *string    `json:"type"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Notes       *string    `json:"notes"`
	Fee         *float64   `json:"fee"`
}

// Validate checks a complete appointment after defaults are applied.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return apperr.Validation("patientId is required")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return apperr.Validation("startTime and endTime are required")
	}
	if !a.StartTime.Before(a.EndTime) {
		return apperr.Validation("startTime must be before endTime")
	}
	if !a.Status.Valid() {
		return apperr.Validation("invalid appointment status: %s", a.Status)
	}
	if strings.TrimSpace(a.Title) == "" {
		return apperr.Validation("title is required")
	}
	if a.Fee != nil && *a.Fee < 0 {
		return apperr.Validation("fee must not be negative")
	}
	if a.Fee != nil && *a.Fee >= MaxFee {
		return apperr.Validation("fee must be below %.0f", MaxFee)
	}
	return nil
}

func (a *Appointment) applyDefaults() {
	if a.Status == "" {
		a.Status = StatusPending
	}
	if strings.TrimSpace(a.Type) == "" {
		a.Type = DefaultType
	}
}

// Apply copies the supplied fields of p onto a.
func (p *Patch) Apply(a *Appointment) {
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = p.Description
	}
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	if p.Fee != nil {
		a.Fee = p.Fee
	}
}

// TimesChanged reports whether applying p moves the appointment.
func (p *Patch) TimesChanged(a *Appointment) bool {
	return (p.StartTime != nil && !p.StartTime.Equal(a.StartTime)) ||
		(p.EndTime != nil && !p.EndTime.Equal(a.EndTime))
}
