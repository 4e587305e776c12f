package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"biblioaccess/internal/api"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/server"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/testsupport"
	"biblioaccess/internal/users"
)

type testEnv struct {
	t      *testing.T
	http   *httptest.Server
	tasks  *tasks.Store
	users  *users.Store
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	taskStore := testsupport.MustOpenTaskStore(t, cfg)
	userStore := testsupport.MustOpenUserStore(t, cfg)

	srv := server.New(cfg, taskStore, userStore, nil, logging.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		t:      t,
		http:   ts,
		tasks:  taskStore,
		users:  userStore,
		client: ts.Client(),
	}
}

func (e *testEnv) login(email string) string {
	e.t.Helper()

	body, _ := json.Marshal(api.LoginRequest{Email: email, Password: "test-password"})
	resp, err := e.client.Post(e.http.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		e.t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		e.t.Fatalf("login for %s returned %d", email, resp.StatusCode)
	}
	var out api.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		e.t.Fatalf("decode login response: %v", err)
	}
	return out.Token
}

func (e *testEnv) do(method, path, token string, payload any) *http.Response {
	e.t.Helper()

	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.http.URL+path, body)
	if err != nil {
		e.t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeTasks(t *testing.T, resp *http.Response) []api.Task {
	t.Helper()
	defer resp.Body.Close()

	var out []api.Task
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode task list: %v", err)
	}
	return out
}

func decodeTask(t *testing.T, resp *http.Response) api.Task {
	t.Helper()
	defer resp.Body.Close()

	var out api.Task
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return out
}

// advance walks a task through legal edges directly in the store so tests can
// seed any starting status.
func advance(t *testing.T, store *tasks.Store, id int64, path ...tasks.Status) {
	t.Helper()
	for _, status := range path {
		if _, err := store.ChangeStatus(context.Background(), id, status, 0); err != nil {
			t.Fatalf("seed transition to %s: %v", status, err)
		}
	}
}

func TestLoginIssuesTokenAndRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)

	token := env.login("vol@biblio.test")
	if token == "" {
		t.Fatal("expected a token")
	}

	body, _ := json.Marshal(api.LoginRequest{Email: "vol@biblio.test", Password: "wrong"})
	resp, err := env.client.Post(env.http.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password should answer 401, got %d", resp.StatusCode)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/order", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = env.do(http.MethodGet, "/order", "not-a-real-token", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bogus token, got %d", resp.StatusCode)
	}
}

func TestListAppliesRoleVisibility(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	testsupport.NewUser(t, env.users, "revisor@biblio.test", users.RoleVoluntarioAdmin)
	testsupport.NewUser(t, env.users, "alumno@biblio.test", users.RoleAlumno)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)

	testsupport.NewTask(t, env.tasks, "pendiente")
	started := testsupport.NewTask(t, env.tasks, "en proceso")
	advance(t, env.tasks, started.ID, tasks.StatusEnProceso)
	review := testsupport.NewTask(t, env.tasks, "en revision")
	advance(t, env.tasks, review.ID, tasks.StatusEnProceso, tasks.StatusEnRevision)
	done := testsupport.NewTask(t, env.tasks, "completada")
	advance(t, env.tasks, done.ID, tasks.StatusEnProceso, tasks.StatusEnRevision, tasks.StatusCompletada)
	denied := testsupport.NewTask(t, env.tasks, "denegada")
	advance(t, env.tasks, denied.ID, tasks.StatusEnProceso, tasks.StatusEnRevision, tasks.StatusDenegada)

	cases := []struct {
		email string
		want  map[string]bool
	}{
		{"vol@biblio.test", map[string]bool{"Pendiente": true, "Denegada": true}},
		{"revisor@biblio.test", map[string]bool{"EnRevisión": true}},
		{"alumno@biblio.test", map[string]bool{"Completada": true}},
		{"staff@biblio.test", map[string]bool{
			"Pendiente": true, "EnProceso": true, "EnRevisión": true, "Completada": true, "Denegada": true,
		}},
	}
	for _, tc := range cases {
		token := env.login(tc.email)
		got := decodeTasks(t, env.do(http.MethodGet, "/order", token, nil))
		seen := make(map[string]bool)
		for _, task := range got {
			seen[task.Status] = true
		}
		if len(seen) != len(tc.want) {
			t.Fatalf("%s saw statuses %v, want %v", tc.email, seen, tc.want)
		}
		for status := range tc.want {
			if !seen[status] {
				t.Fatalf("%s should see %s, saw %v", tc.email, status, seen)
			}
		}
	}
}

func createMultipart(t *testing.T, fields map[string]string, fileName string, fileBody []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileBody); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func (e *testEnv) postMultipart(token string, body *bytes.Buffer, contentType string) *http.Response {
	e.t.Helper()

	req, err := http.NewRequest(http.MethodPost, e.http.URL+"/order", body)
	if err != nil {
		e.t.Fatalf("build multipart request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("multipart post: %v", err)
	}
	return resp
}

func TestCreateTaskWithAttachment(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	token := env.login("staff@biblio.test")

	body, contentType := createMultipart(t, map[string]string{
		"name":        "Digitalizar actas",
		"description": "Actas del consejo 2019",
		"dueDate":     "2026-09-15",
	}, "actas.pdf", []byte("%PDF-1.4 fake"))

	resp := env.postMultipart(token, body, contentType)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create returned %d: %s", resp.StatusCode, raw)
	}
	created := decodeTask(t, resp)
	if created.Status != string(tasks.StatusPendiente) {
		t.Fatalf("new tasks must start Pendiente, got %s", created.Status)
	}
	if !strings.HasSuffix(created.FileName, "actas.pdf") {
		t.Fatalf("unexpected file name %q", created.FileName)
	}
}

func TestCreateRejectsUnsupportedFileType(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	token := env.login("staff@biblio.test")

	body, contentType := createMultipart(t, map[string]string{
		"name":    "Malware",
		"dueDate": "2026-09-15",
	}, "payload.exe", []byte("MZ"))

	resp := env.postMultipart(token, body, contentType)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for .exe upload, got %d", resp.StatusCode)
	}
}

func TestStudentsCannotCreateTasks(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "alumno@biblio.test", users.RoleAlumno)
	token := env.login("alumno@biblio.test")

	body, contentType := createMultipart(t, map[string]string{
		"name":    "No permitida",
		"dueDate": "2026-09-15",
	}, "", nil)

	resp := env.postMultipart(token, body, contentType)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student create, got %d", resp.StatusCode)
	}
}

func TestCreateWithStartImmediately(t *testing.T) {
	env := newTestEnv(t)
	vol := testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	token := env.login("vol@biblio.test")

	body, contentType := createMultipart(t, map[string]string{
		"name":             "Transcribir cartas",
		"dueDate":          "2026-09-15",
		"startImmediately": "true",
	}, "", nil)

	resp := env.postMultipart(token, body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	created := decodeTask(t, resp)
	if created.Status != string(tasks.StatusEnProceso) {
		t.Fatalf("startImmediately should leave the task EnProceso, got %s", created.Status)
	}
	if created.AssignedVolunteer != vol.ID {
		t.Fatalf("starting a task should assign the volunteer, got %d", created.AssignedVolunteer)
	}
}

func TestChangeStatusWorkflow(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	testsupport.NewUser(t, env.users, "revisor@biblio.test", users.RoleVoluntarioAdmin)
	volToken := env.login("vol@biblio.test")
	revToken := env.login("revisor@biblio.test")

	task := testsupport.NewTask(t, env.tasks, "flujo completo")

	change := func(token string, target tasks.Status) *http.Response {
		return env.do(http.MethodPut, "/OrderManagment/changeStatus", token,
			api.ChangeStatusRequest{ID: task.ID, Status: string(target)})
	}

	// Volunteers may not skip review.
	resp := change(volToken, tasks.StatusCompletada)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Pendiente to Completada should answer 409, got %d", resp.StatusCode)
	}

	resp = change(volToken, tasks.StatusEnProceso)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("volunteer start failed with %d", resp.StatusCode)
	}
	if got := decodeTask(t, resp); got.Status != string(tasks.StatusEnProceso) {
		t.Fatalf("expected EnProceso, got %s", got.Status)
	}

	// Accepted no-op when the status does not change.
	resp = change(volToken, tasks.StatusEnProceso)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("same-status change should answer 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = change(volToken, tasks.StatusEnRevision)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("volunteer submit failed with %d", resp.StatusCode)
	}

	// Approving is reserved for administrative volunteers and staff.
	resp = change(volToken, tasks.StatusCompletada)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer approval should answer 403, got %d", resp.StatusCode)
	}

	resp = change(revToken, tasks.StatusCompletada)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reviewer approval failed with %d", resp.StatusCode)
	}
	if got := decodeTask(t, resp); got.Status != string(tasks.StatusCompletada) {
		t.Fatalf("expected Completada, got %s", got.Status)
	}
}

func TestChangeStatusParsesLeniently(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	token := env.login("vol@biblio.test")

	task := testsupport.NewTask(t, env.tasks, "lenient")
	resp := env.do(http.MethodPut, "/OrderManagment/changeStatus", token,
		api.ChangeStatusRequest{ID: task.ID, Status: "en proceso"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lenient status spelling rejected with %d", resp.StatusCode)
	}
	if got := decodeTask(t, resp); got.Status != string(tasks.StatusEnProceso) {
		t.Fatalf("expected EnProceso, got %s", got.Status)
	}

	resp = env.do(http.MethodPut, "/OrderManagment/changeStatus", token,
		api.ChangeStatusRequest{ID: task.ID, Status: "archivada"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown status should answer 400, got %d", resp.StatusCode)
	}
}

func TestUpdateNeverTouchesStatus(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	token := env.login("staff@biblio.test")

	task := testsupport.NewTask(t, env.tasks, "original")
	advance(t, env.tasks, task.ID, tasks.StatusEnProceso)

	resp := env.do(http.MethodPut, fmt.Sprintf("/order/%d", task.ID), token,
		api.TaskUpdateRequest{Name: "renombrada", Description: "con detalle"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update failed with %d", resp.StatusCode)
	}
	got := decodeTask(t, resp)
	if got.Name != "renombrada" {
		t.Fatalf("name not updated, got %q", got.Name)
	}
	if got.Status != string(tasks.StatusEnProceso) {
		t.Fatalf("content edits must not move status, got %s", got.Status)
	}
}

func TestDeleteRequiresStaff(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	task := testsupport.NewTask(t, env.tasks, "borrable")

	volToken := env.login("vol@biblio.test")
	resp := env.do(http.MethodDelete, fmt.Sprintf("/order/%d", task.ID), volToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer delete should answer 403, got %d", resp.StatusCode)
	}

	staffToken := env.login("staff@biblio.test")
	resp = env.do(http.MethodDelete, fmt.Sprintf("/order/%d", task.ID), staffToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("staff delete failed with %d", resp.StatusCode)
	}

	resp = env.do(http.MethodGet, fmt.Sprintf("/order/%d", task.ID), staffToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted task should answer 404, got %d", resp.StatusCode)
	}
}

func TestDownloadAttachment(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	token := env.login("staff@biblio.test")

	content := []byte("%PDF-1.4 contenido")
	body, contentType := createMultipart(t, map[string]string{
		"name":    "Con adjunto",
		"dueDate": "2026-09-15",
	}, "informe.pdf", content)
	created := decodeTask(t, env.postMultipart(token, body, contentType))

	resp := env.do(http.MethodGet, fmt.Sprintf("/order/download/%d", created.ID), token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download failed with %d", resp.StatusCode)
	}
	got, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(got, content) {
		t.Fatalf("downloaded bytes differ from upload")
	}

	bare := testsupport.NewTask(t, env.tasks, "sin adjunto")
	resp = env.do(http.MethodGet, fmt.Sprintf("/order/download/%d", bare.ID), token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("task without file should answer 404, got %d", resp.StatusCode)
	}
}

func TestAssignedTasksDefaultsToCaller(t *testing.T) {
	env := newTestEnv(t)
	vol := testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	other := testsupport.NewUser(t, env.users, "otro@biblio.test", users.RoleVoluntario)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)

	mine := testsupport.NewTask(t, env.tasks, "mia")
	if _, err := env.tasks.ChangeStatus(context.Background(), mine.ID, tasks.StatusEnProceso, vol.ID); err != nil {
		t.Fatalf("assign task: %v", err)
	}
	theirs := testsupport.NewTask(t, env.tasks, "ajena")
	if _, err := env.tasks.ChangeStatus(context.Background(), theirs.ID, tasks.StatusEnProceso, other.ID); err != nil {
		t.Fatalf("assign task: %v", err)
	}

	volToken := env.login("vol@biblio.test")
	got := decodeTasks(t, env.do(http.MethodGet, "/OrderManagment/asignadas", volToken, nil))
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("expected only own assignment, got %+v", got)
	}

	resp := env.do(http.MethodGet, fmt.Sprintf("/OrderManagment/asignadas?idUsuario=%d", other.ID), volToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("querying another volunteer should answer 403, got %d", resp.StatusCode)
	}

	staffToken := env.login("staff@biblio.test")
	got = decodeTasks(t, env.do(http.MethodGet, fmt.Sprintf("/OrderManagment/asignadas?idUsuario=%d", other.ID), staffToken, nil))
	if len(got) != 1 || got[0].ID != theirs.ID {
		t.Fatalf("staff query returned %+v", got)
	}
}

func TestTasksByStatusRequiresParameter(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)
	token := env.login("staff@biblio.test")

	resp := env.do(http.MethodGet, "/OrderManagment/status", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing status should answer 400, got %d", resp.StatusCode)
	}

	testsupport.NewTask(t, env.tasks, "pendiente uno")
	got := decodeTasks(t, env.do(http.MethodGet, "/OrderManagment/status?status=pendiente", token, nil))
	if len(got) != 1 {
		t.Fatalf("expected one pending task, got %d", len(got))
	}
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t)
	vol := testsupport.NewUser(t, env.users, "vol@biblio.test", users.RoleVoluntario)
	testsupport.NewUser(t, env.users, "staff@biblio.test", users.RoleBibliotecario)

	volToken := env.login("vol@biblio.test")
	resp := env.do(http.MethodGet, "/user/me", volToken, nil)
	var me api.User
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode /user/me: %v", err)
	}
	resp.Body.Close()
	if me.ID != vol.ID || me.Role != string(users.RoleVoluntario) {
		t.Fatalf("unexpected identity %+v", me)
	}

	resp = env.do(http.MethodGet, "/User", volToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer listing accounts should answer 403, got %d", resp.StatusCode)
	}

	staffToken := env.login("staff@biblio.test")
	resp = env.do(http.MethodGet, "/User", staffToken, nil)
	var accounts []api.User
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		t.Fatalf("decode /User: %v", err)
	}
	resp.Body.Close()
	if len(accounts) != 2 {
		t.Fatalf("expected two accounts, got %d", len(accounts))
	}
}

func TestHealthReportsTaskSummary(t *testing.T) {
	env := newTestEnv(t)
	testsupport.NewTask(t, env.tasks, "uno")
	testsupport.NewTask(t, env.tasks, "dos")

	resp, err := env.client.Get(env.http.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
		Tasks  struct {
			Total     int `json:"total"`
			Pendiente int `json:"pendiente"`
		} `json:"tasks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if out.Status != "ok" || out.Tasks.Total != 2 || out.Tasks.Pendiente != 2 {
		t.Fatalf("unexpected health payload %+v", out)
	}
}
