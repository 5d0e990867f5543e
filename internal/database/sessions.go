package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// Session is an authenticated login. Token carries the unhashed value and
// is only populated on creation; the store keeps a SHA-256 of it.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionDuration is how long a login stays valid.
const SessionDuration = 7 * 24 * time.Hour

// ErrInvalidSession covers unknown, expired, and malformed session tokens.
var ErrInvalidSession = errors.New("invalid session")

// CreateSession logs a user in and returns the session with its
// plaintext token for the cookie.
func (d *Database) CreateSession(userID int64) (s *Session, err error) {
	start := time.Now()
	defer func() { recordQuery("create_session", start, err) }()

	tokenBytes := make([]byte, 32)
	if _, err = rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)
	expiresAt := time.Now().Add(SessionDuration)

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, hashToken(tokenBytes), expiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	id, _ := result.LastInsertId()

	d.updateSessionGauge(ctx)
	return &Session{ID: id, UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateSession resolves a token to its active account. Expired sessions
// are deleted out of band so validation never blocks on a write.
func (d *Database) ValidateSession(token string) (u *User, err error) {
	start := time.Now()
	defer func() { recordQuery("validate_session", start, err) }()

	tokenBytes, err := hex.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	tokenHash := hashToken(tokenBytes)

	d.mu.RLock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var userID, expiresAt int64
	err = d.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?",
		tokenHash,
	).Scan(&userID, &expiresAt)
	if err != nil {
		d.mu.RUnlock()
		return nil, ErrInvalidSession
	}

	if time.Now().Unix() > expiresAt {
		d.mu.RUnlock()
		go func() {
			if delErr := d.deleteSessionByHash(tokenHash); delErr != nil {
				logging.Error("deleting expired session: %v", delErr)
			}
		}()
		return nil, ErrInvalidSession
	}

	row := d.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, admin, active, created_at, updated_at FROM users WHERE id = ?",
		userID,
	)
	d.mu.RUnlock()

	u, err = scanUser(row)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if !u.Active {
		return nil, ErrInvalidSession
	}
	return u, nil
}

// DeleteSession logs a token out.
func (d *Database) DeleteSession(token string) error {
	tokenBytes, err := hex.DecodeString(token)
	if err != nil {
		return ErrInvalidSession
	}
	return d.deleteSessionByHash(hashToken(tokenBytes))
}

func (d *Database) deleteSessionByHash(tokenHash string) (err error) {
	start := time.Now()
	defer func() { recordQuery("delete_session", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", tokenHash)
	d.updateSessionGauge(ctx)
	return err
}

// CleanExpiredSessions removes sessions past their expiry. Run it
// periodically; nothing else prunes the table.
func (d *Database) CleanExpiredSessions() (err error) {
	start := time.Now()
	defer func() { recordQuery("clean_expired_sessions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		logging.Debug("Removed %d expired sessions", n)
	}
	d.updateSessionGauge(ctx)
	return nil
}

func (d *Database) updateSessionGauge(ctx context.Context) {
	var n int
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE expires_at >= ?", time.Now().Unix(),
	).Scan(&n); err == nil {
		metrics.SessionsActive.Set(float64(n))
	}
}

func hashToken(tokenBytes []byte) string {
	sum := sha256.Sum256(tokenBytes)
	return hex.EncodeToString(sum[:])
}
