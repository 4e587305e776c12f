package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/services"
)

const userColumns = "id, name, email, role, password_salt, password_digest, created_at"

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		id         int64
		name       string
		email      string
		roleStr    string
		salt       string
		digest     string
		createdRaw string
	)
	if err := scanner.Scan(&id, &name, &email, &roleStr, &salt, &digest, &createdRaw); err != nil {
		return nil, err
	}
	user := &User{
		ID:             id,
		Name:           name,
		Email:          email,
		Role:           Role(roleStr),
		passwordSalt:   salt,
		passwordDigest: digest,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		user.CreatedAt = created
	}
	return user, nil
}

// Create inserts a new account. Emails are stored lowercased and must be
// unique.
func (s *Store) Create(ctx context.Context, draft NewUser) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(draft.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, services.Wrap(services.ErrValidation, "users", "create", "valid email is required", nil)
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, services.Wrap(services.ErrValidation, "users", "create", "name is required", nil)
	}
	if len(draft.Password) < 8 {
		return nil, services.Wrap(services.ErrValidation, "users", "create", "password must be at least 8 characters", nil)
	}
	if _, ok := ParseRole(string(draft.Role)); !ok {
		return nil, services.Wrap(services.ErrValidation, "users", "create",
			fmt.Sprintf("unknown role %q", string(draft.Role)), nil)
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO users (name, email, role, password_salt, password_digest, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(draft.Name),
		email,
		string(draft.Role),
		salt,
		digestPassword(salt, draft.Password),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, services.Wrap(services.ErrValidation, "users", "create", "email already registered", nil)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches an account by identifier. Missing accounts return (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches an account by email. Missing accounts return (nil, nil).
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// List returns all accounts ordered by identifier.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, user)
	}
	return items, rows.Err()
}

// Authenticate verifies credentials and returns the matching account. Unknown
// emails and wrong passwords fail identically.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !verifyPassword(user.passwordSalt, user.passwordDigest, password) {
		return nil, services.Wrap(services.ErrUnauthorized, "users", "authenticate", "invalid credentials", nil)
	}
	return user, nil
}

// SeedAdmin ensures the configured administrator account exists. Existing
// accounts are left untouched; seeding is skipped when no password is
// configured.
func (s *Store) SeedAdmin(ctx context.Context, cfg *config.Config) (*User, error) {
	if cfg.Server.SeedAdminPass == "" {
		return nil, nil
	}
	existing, err := s.GetByEmail(ctx, cfg.Server.SeedAdminEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	name := cfg.Server.SeedAdminName
	if name == "" {
		name = "Administrator"
	}
	return s.Create(ctx, NewUser{
		Name:     name,
		Email:    cfg.Server.SeedAdminEmail,
		Password: cfg.Server.SeedAdminPass,
		Role:     RoleAdmin,
	})
}
