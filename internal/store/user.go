package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/launchhub-app/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, photo_url, role, password_hash, is_subscribed, created_at, updated_at`

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (email, name, photo_url, role, password_hash, is_subscribed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Name,
		user.PhotoURL,
		user.Role,
		user.PasswordHash,
		user.IsSubscribed,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// Upsert inserts the user on first sign-in and refreshes the profile
// fields on later sign-ins. Role, subscription flag and password hash are
// kept server-authoritative and never overwritten by an upsert.
func (r *UserRepository) Upsert(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = types.RoleUser
	}

	const query = `
		INSERT INTO users (email, name, photo_url, role, password_hash, is_subscribed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			photo_url = EXCLUDED.photo_url,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Name,
		user.PhotoURL,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

// SetRole changes the authorization level of the account.
func (r *UserRepository) SetRole(ctx context.Context, id int, role string) error {
	const query = `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSubscribed flips the subscription flag. It reports false when the
// account was already subscribed so the flip happens at most once.
func (r *UserRepository) MarkSubscribed(ctx context.Context, email string) (bool, error) {
	const query = `
		UPDATE users
		SET is_subscribed = TRUE, updated_at = $1
		WHERE lower(email) = lower($2) AND is_subscribed = FALSE`
	result, err := r.db.ExecContext(ctx, query, time.Now(), strings.TrimSpace(email))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish "already subscribed" from "no such user".
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return false, err
	}
	return false, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PhotoURL,
		&user.Role,
		&user.PasswordHash,
		&user.IsSubscribed,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return types.User{}, err
	}
	return user, nil
}
