package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is one account. Album manifests reference accounts by email.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	hash string
}

// Account errors surfaced to the HTTP layer.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CreateUser adds an account with a bcrypt-hashed password.
func (d *Database) CreateUser(email, password string, admin bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("create_user", start, err) }()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, admin) VALUES (?, ?, ?)",
		email, string(hash), admin,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			err = fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return err
	}
	return nil
}

// GetUser looks an account up by email.
func (d *Database) GetUser(email string) (u *User, err error) {
	start := time.Now()
	defer func() { recordQuery("get_user", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return scanUser(d.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, admin, active, created_at, updated_at FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)),
	))
}

// ListUsers returns every account ordered by email.
func (d *Database) ListUsers() (users []User, err error) {
	start := time.Now()
	defer func() { recordQuery("list_users", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, email, password_hash, admin, active, created_at, updated_at FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ValidateCredentials checks an email/password pair and returns the account
// when it matches an active user. Both unknown email and wrong password
// report ErrInvalidCredentials so callers cannot probe for accounts.
func (d *Database) ValidateCredentials(email, password string) (u *User, err error) {
	start := time.Now()
	defer func() { recordQuery("validate_credentials", start, err) }()

	u, err = d.GetUser(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdatePassword changes an account's password and revokes its sessions.
func (d *Database) UpdatePassword(email, newPassword string) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_password", start, err) }()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = strftime('%s', 'now') WHERE email = ?",
		string(hash), strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	_, err = d.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = (SELECT id FROM users WHERE email = ?)",
		strings.ToLower(strings.TrimSpace(email)),
	)
	return err
}

// SetAdmin grants or revokes the administrator role.
func (d *Database) SetAdmin(email string, admin bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_admin", start, err) }()

	return d.updateUserFlag(email, "admin", admin)
}

// SetActive enables or disables an account. Disabled accounts cannot log
// in; their existing sessions stop validating.
func (d *Database) SetActive(email string, active bool) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_active", start, err) }()

	return d.updateUserFlag(email, "active", active)
}

func (d *Database) updateUserFlag(email, column string, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// column is one of the fixed names above, never caller input.
	result, err := d.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s = ?, updated_at = strftime('%%s', 'now') WHERE email = ?", column),
		value, strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var createdAt, updatedAt int64
	err := row.Scan(&u.ID, &u.Email, &u.hash, &u.Admin, &u.Active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}
