package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"biblioaccess/internal/services"
	"biblioaccess/internal/testsupport"
	"biblioaccess/internal/users"
)

func TestCreateAndAuthenticate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenUserStore(t, cfg)

	ctx := context.Background()
	created, err := store.Create(ctx, users.NewUser{
		Name:     "Ana Morales",
		Email:    "Ana@Biblioteca.Example",
		Password: "correcthorse",
		Role:     users.RoleVoluntario,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Email != "ana@biblioteca.example" {
		t.Fatalf("email should be stored lowercased, got %q", created.Email)
	}

	authed, err := store.Authenticate(ctx, "ana@biblioteca.example", "correcthorse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != created.ID || authed.Role != users.RoleVoluntario {
		t.Fatalf("unexpected authenticated user: %#v", authed)
	}

	if _, err := store.Authenticate(ctx, "ana@biblioteca.example", "wrong"); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("wrong password should be unauthorized, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "nadie@biblioteca.example", "correcthorse"); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("unknown email should be unauthorized, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenUserStore(t, cfg)

	ctx := context.Background()
	cases := []users.NewUser{
		{Name: "Sin Email", Password: "longenough", Role: users.RoleAlumno},
		{Name: "Mal Email", Email: "not-an-email", Password: "longenough", Role: users.RoleAlumno},
		{Email: "a@b.example", Password: "longenough", Role: users.RoleAlumno},
		{Name: "Clave Corta", Email: "c@d.example", Password: "short", Role: users.RoleAlumno},
		{Name: "Rol Raro", Email: "e@f.example", Password: "longenough", Role: "Superusuario"},
	}
	for i, draft := range cases {
		if _, err := store.Create(ctx, draft); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	testsupport.NewUser(t, store, "dup@biblioteca.example", users.RoleAlumno)
	if _, err := store.Create(ctx, users.NewUser{
		Name:     "Duplicado",
		Email:    "dup@biblioteca.example",
		Password: "longenough",
		Role:     users.RoleAlumno,
	}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("duplicate email should be rejected, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenUserStore(t, cfg)

	ctx := context.Background()
	user := testsupport.NewUser(t, store, "sesion@biblioteca.example", users.RoleBibliotecario)

	session, err := store.StartSession(ctx, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}

	resolved, err := store.ResolveToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if resolved == nil || resolved.ID != user.ID {
		t.Fatalf("unexpected resolved user: %#v", resolved)
	}

	ended, err := store.EndSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if !ended {
		t.Fatal("expected EndSession to report deletion")
	}
	if resolved, _ := store.ResolveToken(ctx, session.Token); resolved != nil {
		t.Fatal("ended session should not resolve")
	}
}

func TestExpiredSessionsDoNotResolve(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenUserStore(t, cfg)

	ctx := context.Background()
	user := testsupport.NewUser(t, store, "caducada@biblioteca.example", users.RoleAlumno)

	session, err := store.StartSession(ctx, user.ID, time.Millisecond)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	resolved, err := store.ResolveToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if resolved != nil {
		t.Fatal("expired session should not resolve")
	}

	// The expired row is removed on resolution, so a purge finds nothing.
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 0 {
		t.Fatalf("expected 0 purged sessions, got %d", purged)
	}
}

func TestSeedAdmin(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenUserStore(t, cfg)

	ctx := context.Background()
	admin, err := store.SeedAdmin(ctx, cfg)
	if err != nil {
		t.Fatalf("SeedAdmin failed: %v", err)
	}
	if admin == nil || admin.Role != users.RoleAdmin {
		t.Fatalf("expected seeded admin, got %#v", admin)
	}

	again, err := store.SeedAdmin(ctx, cfg)
	if err != nil {
		t.Fatalf("second SeedAdmin failed: %v", err)
	}
	if again.ID != admin.ID {
		t.Fatal("seeding twice should reuse the existing account")
	}

	if _, err := store.Authenticate(ctx, cfg.Server.SeedAdminEmail, cfg.Server.SeedAdminPass); err != nil {
		t.Fatalf("seeded admin should authenticate: %v", err)
	}
}

func TestParseRoleLenient(t *testing.T) {
	cases := []struct {
		input string
		want  users.Role
	}{
		{"alumno", users.RoleAlumno},
		{"Voluntario", users.RoleVoluntario},
		{"voluntario administrativo", users.RoleVoluntarioAdmin},
		{"VOLUNTARIO_ADMINISTRATIVO", users.RoleVoluntarioAdmin},
		{"bibliotecario", users.RoleBibliotecario},
		{"admin", users.RoleAdmin},
	}
	for _, tc := range cases {
		got, ok := users.ParseRole(tc.input)
		if !ok || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q/%v, want %q", tc.input, got, ok, tc.want)
		}
	}
	if _, ok := users.ParseRole("superusuario"); ok {
		t.Fatal("unknown role should not parse")
	}
}
