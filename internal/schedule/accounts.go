package schedule

import (
	"context"
	"errors"

	"vaccine-scheduler-api/internal/auth"
	"vaccine-scheduler-api/internal/model"
	"vaccine-scheduler-api/internal/store"
)

// Register creates an identity in the role's namespace. The password must
// pass the registration policy; the policy error is returned verbatim so
// callers can show the user what to fix.
func (s *Scheduler) Register(ctx context.Context, username, password string, role model.Role) error {
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return err
	}
	id := &model.Identity{
		Username:     username,
		Role:         role,
		Salt:         salt,
		PasswordHash: auth.HashPassword(password, salt),
	}

	err = s.store.CreateIdentity(ctx, id)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return ErrUsernameTaken
	case err != nil:
		return storageErr("create identity", err)
	}
	s.log.Info().Str("username", username).Str("role", string(role)).Msg("identity created")
	return nil
}

// Login verifies credentials and returns a signed session token.
// Missing user and wrong password are indistinguishable to the caller.
func (s *Scheduler) Login(ctx context.Context, username, password string, role model.Role) (string, error) {
	id, err := s.store.IdentityByUsername(ctx, username, role)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", ErrInvalidCredentials
	case err != nil:
		return "", storageErr("load identity", err)
	}

	if !auth.CheckPassword(password, id.Salt, id.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return auth.MakeToken(username, role, s.secret)
}
