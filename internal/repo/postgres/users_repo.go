package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, is_superuser, last_login, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsSuperuser,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (repo *UsersRepo) getByColumn(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := repo.observe(op, func() error {
		var e error
		u, e = scanUser(repo.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE `+where,
			arg,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return repo.getByColumn(ctx, "users.get_by_id", "id = $1", id)
}

func (repo *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getByColumn(ctx, "users.get_by_username", "username = $1", username)
}

func (repo *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getByColumn(ctx, "users.get_by_email", "email = $1", email)
}

// GetByUsernameOrEmail backs the registration pre-check: a row matching
// either column is enough to reject the registration.
func (repo *UsersRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error) {
	var u user.User

	err := repo.observe("users.get_by_username_or_email", func() error {
		var e error
		u, e = scanUser(repo.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2 LIMIT 1`,
			username, email,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) List(ctx context.Context, skip, limit int) ([]user.User, error) {
	var out []user.User

	err := repo.observe("users.list", func() error {
		rows, err := repo.pool.Query(
			ctx,
			// insertion order; stable for pagination
			`SELECT `+userColumns+` FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`,
			limit, skip,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0, limit)

		for rows.Next() {
			u, err := scanUser(rows)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Create relies on the unique constraints on username and email; there is
// no check-then-insert window here.
func (repo *UsersRepo) Create(ctx context.Context, nu user.NewUser, passwordHash string) (user.User, error) {
	var u user.User

	err := repo.observe("users.create", func() error {
		var e error
		u, e = scanUser(repo.pool.QueryRow(
			ctx,
			`INSERT INTO users (username, email, first_name, last_name, password_hash, is_active, is_superuser, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, NOW(), NOW())
			RETURNING `+userColumns,
			nu.Username, nu.Email, nu.FirstName, nu.LastName, passwordHash,
		))
		return e
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrExists
		}

		return user.User{}, err
	}

	return u, nil
}

// Update applies only the fields set on the patch. The SET list is built
// per enumerated field, never via reflection.
func (repo *UsersRepo) Update(ctx context.Context, id int64, patch user.Patch) (user.User, error) {
	if patch.IsZero() {
		return repo.GetByID(ctx, id)
	}

	var sets []string
	var args []interface{}

	argsPosition := 1

	set := func(column string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if patch.Username != nil {
		set("username", *patch.Username)
	}

	if patch.Email != nil {
		set("email", *patch.Email)
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}

	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}

	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argsPosition, userColumns,
	)
	args = append(args, id)

	var u user.User

	err := repo.observe("users.update", func() error {
		var e error
		u, e = scanUser(repo.pool.QueryRow(ctx, query, args...))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if isUniqueViolation(err) {
			return user.User{}, user.ErrExists
		}

		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return repo.observe("users.update_password_hash", func() error {
		tag, err := repo.pool.Exec(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, hash,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (repo *UsersRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return repo.observe("users.update_last_login", func() error {
		tag, err := repo.pool.Exec(ctx,
			`UPDATE users SET last_login = $2 WHERE id = $1`,
			id, at,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (repo *UsersRepo) Delete(ctx context.Context, id int64) error {
	return repo.observe("users.delete", func() error {
		tag, err := repo.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}
