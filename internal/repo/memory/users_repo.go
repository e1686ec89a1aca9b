package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
)

// UsersRepo is an in-memory stand-in for the postgres repo. It backs the
// router-level tests and local development without a database.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// either column counts as a collision
	for _, u := range r.items {
		if u.Username == username || u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context, skip, limit int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.items))

	for id := range r.items {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]user.User, 0, limit)

	for i := skip; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.items[ids[i]])
	}

	return out, nil
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Username == nu.Username || u.Email == nu.Email {
			return user.User{}, user.ErrExists
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           r.nextID,
		Username:     nu.Username,
		Email:        nu.Email,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.nextID++
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, patch user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if patch.Username != nil || patch.Email != nil {
		for otherID, other := range r.items {
			if otherID == id {
				continue
			}
			if patch.Username != nil && other.Username == *patch.Username {
				return user.User{}, user.ErrExists
			}
			if patch.Email != nil && other.Email == *patch.Email {
				return user.User{}, user.ErrExists
			}
		}
	}

	patch.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}

func (r *UsersRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	u.LastLogin = &at
	r.items[id] = u

	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// Seed inserts a user as-is, superuser flag included. Test fixtures and
// local dev only.
func (r *UsersRepo) Seed(u user.User) user.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		u.ID = r.nextID
	}

	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	r.items[u.ID] = u

	return u
}
