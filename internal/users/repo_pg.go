package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts or updates a profile, preserving created_at and any stored
// password hash when the update carries none.
func (r *PGRepo) Upsert(ctx context.Context, user UserProfile) error {
	const query = `
INSERT INTO users (uid, email, display_name, photo_url, initials, password_hash, created_at, last_login_at)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), now(), now())
ON CONFLICT (uid)
DO UPDATE SET
	email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
	display_name = EXCLUDED.display_name,
	photo_url = EXCLUDED.photo_url,
	initials = COALESCE(EXCLUDED.initials, users.initials),
	password_hash = COALESCE(EXCLUDED.password_hash, users.password_hash),
	last_login_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.UID,
		strings.ToLower(user.Email),
		user.DisplayName,
		user.PhotoURL,
		user.Initials,
		user.PasswordHash,
	)
	return err
}

// GetByUID returns a profile by its UID.
func (r *PGRepo) GetByUID(ctx context.Context, uid string) (UserProfile, error) {
	const query = `
SELECT uid, email, display_name, photo_url, initials, password_hash, created_at, last_login_at
FROM users
WHERE uid = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, uid))
}

// GetByEmail returns a profile by email, case-insensitively.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (UserProfile, error) {
	const query = `
SELECT uid, email, display_name, photo_url, initials, password_hash, created_at, last_login_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// TouchLastLogin updates the last-login timestamp.
func (r *PGRepo) TouchLastLogin(ctx context.Context, uid string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login_at = now() WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) scanOne(row *sql.Row) (UserProfile, error) {
	var (
		user         UserProfile
		email        sql.NullString
		initials     sql.NullString
		passwordHash sql.NullString
	)
	err := row.Scan(&user.UID, &email, &user.DisplayName, &user.PhotoURL, &initials, &passwordHash, &user.CreatedAt, &user.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserProfile{}, ErrNotFound
	}
	if err != nil {
		return UserProfile{}, err
	}
	user.Email = email.String
	user.Initials = initials.String
	user.PasswordHash = passwordHash.String
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
