package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/security"
)

// ErrInvalidCredentials is returned for an empty username, an unknown
// username and a wrong password alike, so responses never reveal whether
// an account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Keep this small interface so tests can fake it easily.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// Authenticator turns (username, password) into a verified user. It does
// not look at is_active; the authorization gates own that check.
type Authenticator struct {
	users CredentialStore
	log   *slog.Logger
}

func NewAuthenticator(users CredentialStore, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}

	return &Authenticator{users: users, log: log}
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	if username == "" {
		// no lookup, no hash comparison
		return user.User{}, ErrInvalidCredentials
	}

	u, err := a.users.GetByUsername(ctx, username)

	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			a.log.Error("authenticate lookup failed", "err", err)
		}

		return user.User{}, ErrInvalidCredentials
	}

	ok, newHash := security.VerifyAndUpgrade(password, u.PasswordHash)

	if !ok {
		return user.User{}, ErrInvalidCredentials
	}

	if newHash != "" {
		// persist the upgraded hash before handing the user back
		if err := a.users.UpdatePasswordHash(ctx, u.ID, newHash); err != nil {
			a.log.Warn("password hash upgrade not persisted", "user_id", u.ID, "err", err)
		} else {
			u.PasswordHash = newHash
		}
	}

	return u, nil
}
