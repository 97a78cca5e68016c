package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vaccine-scheduler-api/internal/model"
	"vaccine-scheduler-api/internal/store"
)

// Scheduler owns the reservation protocol and the bookkeeping around it.
// It does not authenticate: callers pass an already-verified identity.
type Scheduler struct {
	store  *store.Store
	secret string
	log    zerolog.Logger
}

func New(st *store.Store, secret string, log zerolog.Logger) *Scheduler {
	return &Scheduler{store: st, secret: secret, log: log}
}

// Confirmation is the successful outcome of Reserve.
type Confirmation struct {
	AppointmentID int64
	Caregiver     string
}

// Reserve books one appointment for patient on day: one dose of vaccine,
// one slot of the lexicographically-first available caregiver, one
// appointment record — all or nothing. A rejection leaves every ledger
// untouched.
func (s *Scheduler) Reserve(ctx context.Context, patient string, day time.Time, vaccine string) (*Confirmation, error) {
	lg := s.log.With().
		Str("request_id", uuid.New().String()).
		Str("patient", patient).
		Str("vaccine", vaccine).
		Str("day", day.Format(time.DateOnly)).
		Logger()

	a, err := s.store.Reserve(ctx, patient, vaccine, day)
	switch {
	case errors.Is(err, store.ErrNoDoses):
		lg.Info().Msg("reservation rejected: out of doses")
		return nil, ErrInsufficientDoses
	case errors.Is(err, store.ErrNoSlot):
		lg.Info().Msg("reservation rejected: no caregiver available")
		return nil, ErrNoCaregiverAvailable
	case err != nil:
		lg.Error().Err(err).Msg("reservation aborted")
		return nil, storageErr("reserve", err)
	}

	lg.Info().
		Int64("appointment_id", a.ID).
		Str("caregiver", a.Caregiver).
		Msg("reservation confirmed")
	return &Confirmation{AppointmentID: a.ID, Caregiver: a.Caregiver}, nil
}

// DaySchedule is what a logged-in user sees when searching a date: who is
// free, and what stock remains.
type DaySchedule struct {
	Caregivers []string
	Vaccines   []model.Vaccine
}

func (s *Scheduler) Schedule(ctx context.Context, day time.Time) (*DaySchedule, error) {
	caregivers, err := s.store.CaregiversOn(ctx, day)
	if err != nil {
		return nil, storageErr("list caregivers", err)
	}
	vaccines, err := s.store.ListVaccines(ctx)
	if err != nil {
		return nil, storageErr("list vaccines", err)
	}
	return &DaySchedule{Caregivers: caregivers, Vaccines: vaccines}, nil
}

// UploadAvailability opens one slot for caregiver on day.
func (s *Scheduler) UploadAvailability(ctx context.Context, caregiver string, day time.Time) error {
	err := s.store.OpenSlot(ctx, caregiver, day)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return ErrDuplicateSlot
	case err != nil:
		return storageErr("open slot", err)
	}
	s.log.Info().
		Str("caregiver", caregiver).
		Str("day", day.Format(time.DateOnly)).
		Msg("availability uploaded")
	return nil
}

// AddDoses restocks a vaccine, creating it on first restock. Returns the
// new total.
func (s *Scheduler) AddDoses(ctx context.Context, vaccine string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	total, err := s.store.AddDoses(ctx, vaccine, amount)
	if err != nil {
		return 0, storageErr("add doses", err)
	}
	s.log.Info().
		Str("vaccine", vaccine).
		Int("added", amount).
		Int("total", total).
		Msg("doses restocked")
	return total, nil
}

// Appointments lists the identity's bookings ordered by appointment id.
func (s *Scheduler) Appointments(ctx context.Context, username string, role model.Role) ([]model.Appointment, error) {
	out, err := s.store.AppointmentsFor(ctx, username, role)
	if err != nil {
		return nil, storageErr("list appointments", err)
	}
	return out, nil
}
