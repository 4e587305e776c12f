package testsupport

import (
	"context"
	"testing"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

// MustOpenTaskStore opens a tasks.Store for tests and registers cleanup.
func MustOpenTaskStore(t testing.TB, cfg *config.Config) *tasks.Store {
	t.Helper()

	store, err := tasks.Open(cfg)
	if err != nil {
		t.Fatalf("tasks.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenUserStore opens a users.Store for tests and registers cleanup.
func MustOpenUserStore(t testing.TB, cfg *config.Config) *users.Store {
	t.Helper()

	store, err := users.Open(cfg)
	if err != nil {
		t.Fatalf("users.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTask creates a task for tests using the provided store.
func NewTask(t testing.TB, store *tasks.Store, name string) *tasks.Task {
	t.Helper()

	task, err := store.Create(context.Background(), tasks.NewTask{
		Name:    name,
		DueDate: time.Now().UTC().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return task
}

// NewUser creates an account with the given role for tests.
func NewUser(t testing.TB, store *users.Store, email string, role users.Role) *users.User {
	t.Helper()

	user, err := store.Create(context.Background(), users.NewUser{
		Name:     "Test " + string(role),
		Email:    email,
		Password: "test-password",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("users.Create: %v", err)
	}
	return user
}
