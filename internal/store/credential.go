package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler-api/internal/model"
)

// Patients and caregivers live in separate tables so the two username
// namespaces cannot collide. The table is picked off the role.
func credentialTable(role model.Role) (string, error) {
	switch role {
	case model.RolePatient:
		return "patients", nil
	case model.RoleCaregiver:
		return "caregivers", nil
	}
	return "", fmt.Errorf("unknown role %q", role)
}

func (s *Store) CreateIdentity(ctx context.Context, id *model.Identity) error {
	table, err := credentialTable(id.Role)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+` (username, salt, password_hash) VALUES ($1,$2,$3)`,
		id.Username, id.Salt, id.PasswordHash,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) IdentityByUsername(ctx context.Context, username string, role model.Role) (*model.Identity, error) {
	table, err := credentialTable(role)
	if err != nil {
		return nil, err
	}
	id := &model.Identity{Username: username, Role: role}
	err = s.pool.QueryRow(ctx,
		`SELECT salt, password_hash, created_at FROM `+table+` WHERE username = $1`,
		username,
	).Scan(&id.Salt, &id.PasswordHash, &id.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}
