package store

import (
	"context"
	"time"
)

// OpenSlot registers one bookable day for a caregiver. Uploading the same
// day twice trips the primary key and reports ErrDuplicate.
func (s *Store) OpenSlot(ctx context.Context, caregiver string, day time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO availabilities (caregiver_username, day) VALUES ($1,$2)`,
		caregiver, day,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// CaregiversOn lists caregivers with an open slot on day, sorted by username.
func (s *Store) CaregiversOn(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT caregiver_username FROM availabilities
		 WHERE day = $1 ORDER BY caregiver_username`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
