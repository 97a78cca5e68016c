package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler-api/internal/model"
)

// AddDoses creates the vaccine on first restock, otherwise adds to the
// existing count. Returns the new total.
func (s *Store) AddDoses(ctx context.Context, name string, amount int) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO vaccines (name, doses) VALUES ($1,$2)
		 ON CONFLICT (name) DO UPDATE SET doses = vaccines.doses + EXCLUDED.doses
		 RETURNING doses`,
		name, amount,
	).Scan(&total)
	return total, err
}

func (s *Store) Vaccine(ctx context.Context, name string) (*model.Vaccine, error) {
	v := &model.Vaccine{Name: name}
	err := s.pool.QueryRow(ctx,
		`SELECT doses FROM vaccines WHERE name = $1`, name,
	).Scan(&v.Doses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) ListVaccines(ctx context.Context) ([]model.Vaccine, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, doses FROM vaccines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vaccine
	for rows.Next() {
		var v model.Vaccine
		if err := rows.Scan(&v.Name, &v.Doses); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
