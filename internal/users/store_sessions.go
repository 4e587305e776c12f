package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartSession issues a new bearer token for the account with the given
// lifetime.
func (s *Store) StartSession(ctx context.Context, userID int64, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := time.Now().UTC()
	session := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		session.CreatedAt.Format(time.RFC3339Nano),
		session.ExpiresAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// ResolveToken returns the account behind a bearer token. Unknown and expired
// tokens return (nil, nil); expired tokens are removed as a side effect.
func (s *Store) ResolveToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT u.id, u.name, u.email, u.role, u.password_salt, u.password_digest, u.created_at, s.expires_at
         FROM sessions s JOIN users u ON u.id = s.user_id
         WHERE s.token = ?`,
		token,
	)

	var (
		id         int64
		name       string
		email      string
		roleStr    string
		salt       string
		digest     string
		createdRaw string
		expiresRaw string
	)
	err := row.Scan(&id, &name, &email, &roleStr, &salt, &digest, &createdRaw, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	expires, err := time.Parse(time.RFC3339Nano, expiresRaw)
	if err != nil || !expires.After(time.Now().UTC()) {
		if _, endErr := s.EndSession(ctx, token); endErr != nil {
			return nil, endErr
		}
		return nil, nil
	}

	user := &User{
		ID:             id,
		Name:           name,
		Email:          email,
		Role:           Role(roleStr),
		passwordSalt:   salt,
		passwordDigest: digest,
	}
	if created, parseErr := time.Parse(time.RFC3339Nano, createdRaw); parseErr == nil {
		user.CreatedAt = created
	}
	return user, nil
}

// EndSession invalidates a bearer token.
func (s *Store) EndSession(ctx context.Context, token string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpired removes sessions past their expiry and returns the count.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
