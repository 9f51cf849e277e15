package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

// LoginToken is a short-lived single-use token backing magic-link
// sign-in and password resets.
type LoginToken struct {
	Token     string
	Email     string
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

const (
	PurposeMagicLink     = "magic_link"
	PurposePasswordReset = "password_reset"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, token_version, created_at
		FROM users
		WHERE LOWER(email) = ?
	`, email)
	return scanUser(row)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, token_version, created_at
		FROM users
		WHERE username = ?
	`, username)
	return scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, token_version, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token_version
		FROM users
		WHERE id = ?
	`, id)

	var version int
	if err := row.Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id string, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: user not found")
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: user not found")
	}
	return nil
}

func (r *Repo) CreateLoginToken(ctx context.Context, t LoginToken) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO login_tokens (token, email, purpose, expires_at)
		VALUES (?, ?, ?, ?)
	`, t.Token, strings.ToLower(strings.TrimSpace(t.Email)), t.Purpose, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken validates and burns a token in one step. Returns
// nil when the token is unknown, expired, wrong-purpose or already
// used.
func (r *Repo) ConsumeLoginToken(ctx context.Context, token, purpose string) (*LoginToken, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token, email, purpose, expires_at, used_at
		FROM login_tokens
		WHERE token = ? AND purpose = ?
	`, token, purpose)

	var (
		t      LoginToken
		usedAt sql.NullTime
	)
	if err := row.Scan(&t.Token, &t.Email, &t.Purpose, &t.ExpiresAt, &usedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get login token: %w", err)
	}
	if usedAt.Valid || time.Now().After(t.ExpiresAt) {
		return nil, nil
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE login_tokens
		SET used_at = CURRENT_TIMESTAMP
		WHERE token = ? AND used_at IS NULL
	`, token)
	if err != nil {
		return nil, fmt.Errorf("mark login token used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// raced with another consumer
		return nil, nil
	}
	return &t, nil
}
