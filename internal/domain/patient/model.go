package patient

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

const dateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Patient is a person registered by a doctor. DateOfBirth is YYYY-MM-DD.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	DoctorID         *uuid.UUID `db:"doctor_id" json:"doctorId,omitempty"`
	FirstName        string     `db:"first_name" json:"firstName"`
	LastName         string     `db:"last_name" json:"lastName"`
	Email            string     `db:"email" json:"email"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth      *string    `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergencyContact,omitempty"`
	EmergencyPhone   *string    `db:"emergency_phone" json:"emergencyPhone,omitempty"`
	IsActive         bool       `db:"is_active" json:"isActive"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// Patch is the body of PATCH /clients/:id and /patients/profile. Nil
// fields keep their stored value.
type Patch struct {
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
}

func (p *Patient) normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = normalizeEmail(p.Email)
	p.DateOfBirth = blankToNil(p.DateOfBirth)
}

func (p *Patient) Validate() error {
	if p.FirstName == "" || p.LastName == "" {
		return apperr.Validation("firstName and lastName are required")
	}
	if err := validateEmail(p.Email); err != nil {
		return err
	}
	return validateDate(p.DateOfBirth)
}

func (p *Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil &&
		p.DateOfBirth == nil && p.Address == nil && p.EmergencyContact == nil && p.EmergencyPhone == nil
}

func (p *Patch) normalize() {
	if p.FirstName != nil {
		v := strings.TrimSpace(*p.FirstName)
		p.FirstName = &v
	}
	if p.LastName != nil {
		v := strings.TrimSpace(*p.LastName)
		p.LastName = &v
	}
	if p.Email != nil {
		v := normalizeEmail(*p.Email)
		p.Email = &v
	}
	p.DateOfBirth = blankToNil(p.DateOfBirth)
}

func (p *Patch) Validate() error {
	if (p.FirstName != nil && *p.FirstName == "") || (p.LastName != nil && *p.LastName == "") {
		return apperr.Validation("firstName and lastName must not be empty")
	}
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return err
		}
	}
	return validateDate(p.DateOfBirth)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("invalid email address: %q", email)
	}
	return nil
}

func validateDate(date *string) error {
	if date == nil {
		return nil
	}
	if _, err := time.Parse(dateLayout, *date); err != nil {
		return apperr.Validation("dateOfBirth must be YYYY-MM-DD, got %q", *date)
	}
	return nil
}
