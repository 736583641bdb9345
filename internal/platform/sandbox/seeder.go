// Package sandbox generates reproducible demo data for development
// databases: doctors with weekly schedules, patients, and a spread of past
// and upcoming appointments that never overlap for the same doctor.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/domain/availability"
	"github.com/Devixx/carepoint-back/internal/platform/db"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume and shape of generated data.
type SeedConfig struct {
	DoctorCount      int
	PatientCount     int
	AppointmentCount int
	// Reset truncates the clinic tables before inserting.
	Reset bool
	Seed  int64
	// Now anchors the appointment window: 30 days back, 90 days ahead.
	Now      time.Time
	Location *time.Location
}

// DefaultSeedConfig returns the demo clinic: every sample doctor, a dozen
// patients and fifty appointments.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		DoctorCount:      len(sampleDoctors),
		PatientCount:     len(samplePatients),
		AppointmentCount: 50,
	}
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

type Doctor struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Specialty    string
	WorkingHours []availability.WorkingHours
}

type Patient struct {
	ID               uuid.UUID
	DoctorID         *uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DateOfBirth      string
	Address          string
	EmergencyContact string
	EmergencyPhone   string
}

type Appointment struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	PatientID   uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	Type        string
	Title       string
	Description string
	Notes       *string
	Fee         float64
}

// Dataset is everything one generation run produced.
type Dataset struct {
	Doctors      []Doctor
	Patients     []Patient
	Appointments []Appointment
}

// SeedResult summarises an insert run.
type SeedResult struct {
	Doctors      int           `json:"doctors"`
	Patients     int           `json:"patients"`
	Appointments int           `json:"appointments"`
	Duration     time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces deterministic demo records.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// id draws a UUID from the generator so identical seeds give identical rows.
func (g *DataGenerator) id() uuid.UUID {
	var b [16]byte
	g.rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}

// weekdaySchedule is Monday to Friday 09:00-17:00 with a lunch break.
func weekdaySchedule() []availability.WorkingHours {
	week := make([]availability.WorkingHours, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		wh := availability.WorkingHours{DayOfWeek: int(d)}
		if d != time.Saturday && d != time.Sunday {
			wh.IsAvailable = true
			wh.StartTime, wh.EndTime = "09:00", "17:00"
			wh.BreakStartTime, wh.BreakEndTime = "12:00", "13:00"
		}
		week = append(week, wh)
	}
	return week
}

// GenerateDoctors returns the first n sample doctors, or all of them when n
// exceeds the sample list.
func (g *DataGenerator) GenerateDoctors(n int) []Doctor {
	if n > len(sampleDoctors) {
		n = len(sampleDoctors)
	}
	out := make([]Doctor, 0, n)
	for _, d := range sampleDoctors[:n] {
		d.ID = g.id()
		d.WorkingHours = weekdaySchedule()
		out = append(out, d)
	}
	return out
}

// GeneratePatients returns the sample patients first, then synthetic ones.
func (g *DataGenerator) GeneratePatients(n int) []Patient {
	out := make([]Patient, 0, n)
	for i := 0; i < n; i++ {
		var p Patient
		if i < len(samplePatients) {
			p = samplePatients[i]
		} else {
			p = Patient{
				FirstName: g.pick(firstNames),
				LastName:  g.pick(lastNames),
				Address:   g.pick(towns) + ", Luxembourg",
			}
			p.Email = fmt.Sprintf("patient%03d@example.com", i+1)
			p.Phone = fmt.Sprintf("+352 621 %03d %03d", 200+g.rng.Intn(800), g.rng.Intn(1000))
			p.DateOfBirth = fmt.Sprintf("%04d-%02d-%02d", 1945+g.rng.Intn(60), 1+g.rng.Intn(12), 1+g.rng.Intn(28))
		}
		p.ID = g.id()
		out = append(out, p)
	}
	return out
}

var appointmentDurations = []int{20, 30, 45, 60}

// GenerateAppointments spreads n appointments over the window around now.
// Candidates that would overlap an existing booking of the same doctor are
// redrawn; after a bounded number of attempts fewer than n may be returned.
func (g *DataGenerator) GenerateAppointments(n int, doctors []Doctor, patients []Patient, now time.Time, loc *time.Location) []Appointment {
	if len(doctors) == 0 || len(patients) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	busy := make(map[uuid.UUID][]Appointment)
	out := make([]Appointment, 0, n)

	for attempts := 0; len(out) < n && attempts < n*20; attempts++ {
		doc := doctors[g.rng.Intn(len(doctors))]
		pat := patients[g.rng.Intn(len(patients))]

		day := time.Date(local.Year(), local.Month(), local.Day()+g.rng.Intn(120)-30, 0, 0, 0, 0, loc)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		hour := 9 + g.rng.Intn(8)
		start := slotStart(day, hour, 30*g.rng.Intn(2))
		end := start.Add(time.Duration(g.pickInt(appointmentDurations)) * time.Minute)
		if overlaps(busy[doc.ID], start, end) {
			continue
		}

		a := Appointment{
			ID:        g.id(),
			DoctorID:  doc.ID,
			PatientID: pat.ID,
			StartTime: start,
			EndTime:   end,
			Type:      g.pick(appointmentTypes),
			Title:     g.pick(appointmentTitles),
			Fee:       math.Round((g.rng.Float64()*200+50)*100) / 100,
		}
		a.Description = fmt.Sprintf("%s with Dr. %s %s", a.Type, doc.FirstName, doc.LastName)
		if g.rng.Float64() > 0.7 {
			note := "Please arrive 15 minutes early"
			a.Notes = &note
		}
		if start.Before(now) {
			a.Status = g.pick(pastStatuses)
		} else {
			a.Status = g.pick(futureStatuses)
		}

		busy[doc.ID] = append(busy[doc.ID], a)
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (g *DataGenerator) pickInt(pool []int) int {
	return pool[g.rng.Intn(len(pool))]
}

func overlaps(booked []Appointment, start, end time.Time) bool {
	for _, b := range booked {
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Seeder generates a dataset and writes it in a single transaction.
type Seeder struct {
	pool      db.Pool
	generator *DataGenerator
	config    SeedConfig
}

func NewSeeder(pool db.Pool, config SeedConfig) *Seeder {
	if config.Now.IsZero() {
		config.Now = time.Now()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Seeder{pool: pool, generator: NewDataGenerator(config.Seed), config: config}
}

// slotStart is hour:minute wall-clock time on day in day's location, so a
// DST change earlier that day does not shift the slot.
func slotStart(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// Generate builds the dataset without touching the database. Patients are
// registered with the doctors in turn.
func (s *Seeder) Generate() *Dataset {
	doctors := s.generator.GenerateDoctors(s.config.DoctorCount)
	patients := s.generator.GeneratePatients(s.config.PatientCount)
	for i := range patients {
		if len(doctors) > 0 {
			id := doctors[i%len(doctors)].ID
			patients[i].DoctorID = &id
		}
	}
	return &Dataset{
		Doctors:      doctors,
		Patients:     patients,
		Appointments: s.generator.GenerateAppointments(s.config.AppointmentCount, doctors, patients, s.config.Now, s.config.Location),
	}
}

// Run generates a dataset and inserts it.
func (s *Seeder) Run(ctx context.Context) (*SeedResult, error) {
	start := time.Now()
	ds := s.Generate()

	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		conn := db.ConnFromContext(ctx, s.pool)

		if s.config.Reset {
			if _, err := conn.Exec(ctx, `TRUNCATE TABLE appointments, patients, users CASCADE`); err != nil {
				return fmt.Errorf("reset tables: %w", err)
			}
		}

		for _, d := range ds.Doctors {
			hours, err := json.Marshal(d.WorkingHours)
			if err != nil {
				return fmt.Errorf("encode working hours: %w", err)
			}
			if _, err := conn.Exec(ctx, `
				INSERT INTO users (id, first_name, last_name, email, phone, role, specialty,
					working_hours, appointment_settings)
				VALUES ($1,$2,$3,$4,$5,'doctor',$6,$7::jsonb,$8::jsonb)`,
				d.ID, d.FirstName, d.LastName, d.Email, d.Phone, d.Specialty,
				hours, []byte(`{"defaultDuration":30,"timeSlotInterval":30}`)); err != nil {
				return fmt.Errorf("insert doctor %s: %w", d.Email, err)
			}
		}

		for _, p := range ds.Patients {
			if _, err := conn.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth,
					address, emergency_contact, emergency_phone, doctor_id)
				VALUES ($1,$2,$3,$4,$5,$6::text::date,$7,NULLIF($8,''),NULLIF($9,''),$10)`,
				p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
				p.Address, p.EmergencyContact, p.EmergencyPhone, p.DoctorID); err != nil {
				return fmt.Errorf("insert patient %s: %w", p.Email, err)
			}
		}

		for _, a := range ds.Appointments {
			if _, err := conn.Exec(ctx, `
				INSERT INTO appointments (id, doctor_id, patient_id, start_time, end_time, status,
					type, title, description, notes, fee)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, a.Status,
				a.Type, a.Title, a.Description, a.Notes, a.Fee); err != nil {
				return fmt.Errorf("insert appointment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SeedResult{
		Doctors:      len(ds.Doctors),
		Patients:     len(ds.Patients),
		Appointments: len(ds.Appointments),
		Duration:     time.Since(start),
	}, nil
}
