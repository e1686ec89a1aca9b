package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrExists is returned by stores when the username or email unique
	// constraint rejects an insert.
	ErrExists = errors.New("user already exists")
)

// User is the account row. The password hash never leaves the service;
// the json tag keeps it out of every response body.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"is_superuser"`
	LastLogin    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"-"`
}

// NewUser carries the fields a caller provides on creation. The store
// assigns id and timestamps; the password arrives already hashed.
type NewUser struct {
	Username  string
	Email     string
	FirstName *string
	LastName  *string
}

// Patch is a partial update: nil fields are left untouched. PasswordHash,
// when set, must already have been hashed by the caller.
type Patch struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
}

func (p Patch) IsZero() bool {
	return p.Username == nil &&
		p.Email == nil &&
		p.FirstName == nil &&
		p.LastName == nil &&
		p.PasswordHash == nil
}

// Apply merges the patch into u field by field.
func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = p.FirstName
	}
	if p.LastName != nil {
		u.LastName = p.LastName
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
