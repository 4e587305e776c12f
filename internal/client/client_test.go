package client_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/client"
	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/server"
	"biblioaccess/internal/services"
	"biblioaccess/internal/session"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/testsupport"
	"biblioaccess/internal/users"
)

type fixture struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Store
	tasks   *tasks.Store
	users   *users.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	taskStore := testsupport.MustOpenTaskStore(t, cfg)
	userStore := testsupport.MustOpenUserStore(t, cfg)

	srv := server.New(cfg, taskStore, userStore, nil, logging.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	cfg.Server.BaseURL = ts.URL

	sess, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		sess.Close()
	})

	return &fixture{
		cfg:     cfg,
		client:  client.New(cfg, sess),
		session: sess,
		tasks:   taskStore,
		users:   userStore,
	}
}

func TestLoginStoresTokenAndProfile(t *testing.T) {
	f := newFixture(t)
	account := testsupport.NewUser(t, f.users, "vol@biblio.test", users.RoleVoluntario)

	profile, err := f.client.Login(context.Background(), "vol@biblio.test", "test-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if profile.UserID != account.ID || profile.Role != users.RoleVoluntario {
		t.Fatalf("unexpected profile %+v", profile)
	}

	token, err := f.session.Token()
	if err != nil || token == "" {
		t.Fatalf("token should be persisted, got %q err %v", token, err)
	}
	cached, err := f.session.Profile()
	if err != nil || cached == nil || cached.Email != "vol@biblio.test" {
		t.Fatalf("profile should be persisted, got %+v err %v", cached, err)
	}
}

func TestRejectedTokenTearsDownSession(t *testing.T) {
	f := newFixture(t)
	if err := f.session.SetToken("stale-token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	_, err := f.client.Tasks(context.Background(), "")
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	token, err := f.session.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "" {
		t.Fatalf("session should be wiped after 401, still has %q", token)
	}
}

func TestTaskLifecycleRoundTrip(t *testing.T) {
	f := newFixture(t)
	testsupport.NewUser(t, f.users, "staff@biblio.test", users.RoleBibliotecario)
	if _, err := f.client.Login(context.Background(), "staff@biblio.test", "test-password"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "acta.pdf")
	if err := os.WriteFile(source, []byte("%PDF-1.4 acta"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	created, err := f.client.CreateTask(ctx, client.CreateTaskInput{
		Name:        "Digitalizar acta",
		Description: "Sesión ordinaria",
		DueDate:     time.Now().Add(96 * time.Hour),
		FilePath:    source,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Status != string(tasks.StatusPendiente) {
		t.Fatalf("expected Pendiente, got %s", created.Status)
	}

	updated, err := f.client.UpdateTask(ctx, created.ID, api.TaskUpdateRequest{
		Name:        "Digitalizar acta 2019",
		Description: created.Description,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Name != "Digitalizar acta 2019" {
		t.Fatalf("update not applied, got %q", updated.Name)
	}

	moved, err := f.client.ChangeStatus(ctx, created.ID, "en proceso")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if moved.Status != string(tasks.StatusEnProceso) {
		t.Fatalf("expected EnProceso, got %s", moved.Status)
	}

	downloaded, err := f.client.Download(ctx, created.ID, t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	content, err := os.ReadFile(downloaded)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(content) != "%PDF-1.4 acta" {
		t.Fatalf("downloaded content differs: %q", content)
	}

	if err := f.client.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := f.client.Task(ctx, created.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCreateTaskReportsUploadProgress(t *testing.T) {
	f := newFixture(t)
	testsupport.NewUser(t, f.users, "staff@biblio.test", users.RoleBibliotecario)
	if _, err := f.client.Login(context.Background(), "staff@biblio.test", "test-password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	source := filepath.Join(t.TempDir(), "grande.pdf")
	payload := bytes.Repeat([]byte("x"), 1<<16)
	if err := os.WriteFile(source, payload, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var lastDone, lastTotal int64
	_, err := f.client.CreateTask(context.Background(), client.CreateTaskInput{
		Name:     "Con progreso",
		DueDate:  time.Now().Add(24 * time.Hour),
		FilePath: source,
		Progress: func(done, total int64) {
			lastDone, lastTotal = done, total
		},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if lastDone != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Fatalf("progress should end at %d/%d, got %d/%d", len(payload), len(payload), lastDone, lastTotal)
	}
}

func TestIllegalTransitionSurfacesConflict(t *testing.T) {
	f := newFixture(t)
	testsupport.NewUser(t, f.users, "vol@biblio.test", users.RoleVoluntario)
	if _, err := f.client.Login(context.Background(), "vol@biblio.test", "test-password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	task := testsupport.NewTask(t, f.tasks, "pendiente")
	_, err := f.client.ChangeStatus(context.Background(), task.ID, "Completada")
	if !errors.Is(err, services.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition marker, got %v", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	testsupport.NewUser(t, f.users, "vol@biblio.test", users.RoleVoluntario)
	if _, err := f.client.Login(context.Background(), "vol@biblio.test", "test-password"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := f.client.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	token, err := f.session.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "" {
		t.Fatalf("token should be cleared, got %q", token)
	}
}
