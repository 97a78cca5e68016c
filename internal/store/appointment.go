package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler-api/internal/model"
)

// Reserve runs the whole allocation as one transaction: consume a dose,
// claim the earliest open caregiver slot, record the appointment. Any
// failure rolls the lot back.
//
// The dose decrement is conditional (doses >= 1), so the row lock it takes
// serializes racers on the same vaccine and the count can never go
// negative. The slot claim locks the candidate row with SKIP LOCKED:
// concurrent claims for the same day each get a different caregiver, and
// an uncontended claim always gets the lexicographically-first one.
func (s *Store) Reserve(ctx context.Context, patient, vaccine string, day time.Time) (*model.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE vaccines SET doses = doses - 1 WHERE name = $1 AND doses >= 1`,
		vaccine,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// absent vaccine and exhausted vaccine reject the same way
		return nil, ErrNoDoses
	}

	var caregiver string
	err = tx.QueryRow(ctx,
		`DELETE FROM availabilities
		 WHERE caregiver_username = (
		     SELECT caregiver_username FROM availabilities
		     WHERE day = $1
		     ORDER BY caregiver_username
		     LIMIT 1
		     FOR UPDATE SKIP LOCKED)
		   AND day = $1
		 RETURNING caregiver_username`,
		day,
	).Scan(&caregiver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSlot
	}
	if err != nil {
		return nil, err
	}

	a := &model.Appointment{
		Patient:   patient,
		Caregiver: caregiver,
		Vaccine:   vaccine,
		Day:       day,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (patient_username, caregiver_username, vaccine_name, day)
		 VALUES ($1,$2,$3,$4)
		 RETURNING id, created_at`,
		a.Patient, a.Caregiver, a.Vaccine, a.Day,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// AppointmentsFor lists the bookings an identity is party to, oldest first.
func (s *Store) AppointmentsFor(ctx context.Context, username string, role model.Role) ([]model.Appointment, error) {
	col := "patient_username"
	if role == model.RoleCaregiver {
		col = "caregiver_username"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_username, caregiver_username, vaccine_name, day, created_at
		 FROM appointments
		 WHERE `+col+` = $1
		 ORDER BY id`, username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.Patient, &a.Caregiver, &a.Vaccine, &a.Day, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
