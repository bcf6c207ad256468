package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Oniqq60/task_system_control/taskclient/internal/cfg"
	"github.com/Oniqq60/task_system_control/taskclient/internal/session"
	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

const testToken = "test-token"

// fakeTaskService is an in-memory stand-in for the remote Task Service.
type fakeTaskService struct {
	mu      sync.Mutex
	tasks   []task.Task
	nextID  int64
	posts   int
	lastPut map[string]interface{}
	queries []string
}

func newFakeTaskService() *fakeTaskService {
	return &fakeTaskService{
		nextID: 3,
		tasks: []task.Task{
			{ID: 1, Title: "Fix login", Description: "Users cannot sign in", Status: "in_progress", Priority: task.PriorityHigh,
				StartDate: "2024-05-01T00:00:00", EndDate: "2024-05-10T00:00:00", UserID: 1, CreatedBy: 1,
				PullRequestsLinks: "https://github.com/org/repo/pull/1,https://github.com/org/repo/pull/2", Username: "ann"},
			{ID: 2, Title: "Write docs", Description: "Document the API", Status: "pending", Priority: task.PriorityLow,
				StartDate: "2024-06-01T00:00:00", EndDate: "2024-06-05T00:00:00", UserID: 1, CreatedBy: 1},
		},
	}
}

func (f *fakeTaskService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/users/login" {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"`+testToken+`","token_type":"bearer"}`)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Not authenticated"}`)
		return
	}

	switch {
	case r.URL.Path == "/users/me":
		_, _ = io.WriteString(w, `{"name":"Ann","email":"ann@example.com"}`)
	case r.URL.Path == "/tasks" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(f.tasks)
	case r.URL.Path == "/tasks" && r.Method == http.MethodPost:
		f.posts++
		var t task.Task
		_ = json.NewDecoder(r.Body).Decode(&t)
		t.ID = f.nextID
		f.nextID++
		f.tasks = append(f.tasks, t)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t)
	case strings.HasPrefix(r.URL.Path, "/tasks/search"):
		q := r.URL.Query().Get("query")
		f.queries = append(f.queries, q)
		var out []task.Task
		for _, t := range f.tasks {
			if strings.Contains(strings.ToLower(t.Title), strings.ToLower(q)) {
				out = append(out, t)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case strings.HasPrefix(r.URL.Path, "/tasks/") && r.Method == http.MethodPut:
		raw, _ := io.ReadAll(r.Body)
		f.lastPut = map[string]interface{}{}
		_ = json.Unmarshal(raw, &f.lastPut)
		var t task.Task
		_ = json.Unmarshal(raw, &t)
		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		for i := range f.tasks {
			if id == strconvID(f.tasks[i].ID) {
				t.ID = f.tasks[i].ID
				t.Username = f.tasks[i].Username
				f.tasks[i] = t
				_ = json.NewEncoder(w).Encode(t)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Task not found"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func strconvID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

type harness struct {
	t     *testing.T
	fake  *fakeTaskService
	store *session.MemoryStore
	url   string
}

func newHarness(t *testing.T, signedIn bool) *harness {
	t.Helper()
	fake := newFakeTaskService()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	h := &harness{t: t, fake: fake, store: session.NewMemoryStore(), url: srv.URL}
	if signedIn {
		_ = h.store.Save(context.Background(), session.Record{Token: testToken, TokenType: "bearer"})
	}
	return h
}

func (h *harness) build(string) (*App, error) {
	conf := cfg.Default()
	conf.APIURL = h.url
	conf.Session.Backend = cfg.SessionMemory
	conf.SearchDebounce = 10 * time.Millisecond

	app, err := NewApp(conf, nil)
	if err != nil {
		return nil, err
	}
	app.Session = session.NewService(session.Options{Auth: app.Auth, Store: h.store, DefaultUserID: 1})
	return app, nil
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), args, h.build, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestLoginThenWhoami(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.run("secret1\n", "login", "--email", "ann@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as Ann <ann@example.com>") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = h.run("", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "ann@example.com") {
		t.Fatalf("unexpected whoami output %q", out)
	}

	if _, err := h.run("", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := h.run("", "whoami"); !errors.Is(err, session.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn after logout, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.run("", "login", "--email", "ann@example.com", "--password", "wrong-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := describeError(err); !strings.Contains(got, "Incorrect username or password") {
		t.Fatalf("expected server detail, got %q", got)
	}
}

func TestListRequiresSession(t *testing.T) {
	h := newHarness(t, false)
	if _, err := h.run("", "list"); !errors.Is(err, session.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestListWithFilters(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"all: 2", "pending: 1", "in progress: 1", "Fix login", "Write docs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = h.run("", "list", "--status", "In Progress")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Fix login") || strings.Contains(out, "Write docs") {
		t.Fatalf("status filter not applied:\n%s", out)
	}

	out, err = h.run("", "list", "--status", "completed")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No completed tasks") {
		t.Fatalf("expected empty state, got:\n%s", out)
	}

	out, err = h.run("", "list", "--from", "2024-06-01", "--to", "2024-06-30")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "Fix login") || !strings.Contains(out, "Write docs") {
		t.Fatalf("date filter not applied:\n%s", out)
	}

	if _, err := h.run("", "list", "--status", "blocked"); err == nil {
		t.Fatalf("expected unknown status error")
	}
}

func TestShow(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("", "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"IN PROGRESS", "https://github.com/org/repo/pull/2", "No Jira Link", "2024-05-10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := h.run("", "show", "99"); !errors.Is(err, task.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestCreateValidationSkipsNetwork(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run("", "create", "--start", "2024-05-02", "--end", "2024-05-01", "--pr", "ftp://x")
	var verr *task.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	msg := describeError(err)
	for _, want := range []string{"Title is required", "End date must be after start date", "pull request 1: Invalid URL"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if h.fake.posts != 0 {
		t.Fatalf("expected no create call")
	}
}

func TestCreate(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("", "create", "-t", "Release", "-d", "Cut and tag",
		"--start", "2024-05-01", "--end", "2024-05-03", "--priority", "high",
		"--pr", "https://github.com/org/repo/pull/7", "--pr", "https://github.com/org/repo/pull/8")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, `Created task #3 "Release"`) {
		t.Fatalf("unexpected output %q", out)
	}

	created := h.fake.tasks[2]
	if created.PullRequestsLinks != "https://github.com/org/repo/pull/7,https://github.com/org/repo/pull/8" {
		t.Fatalf("unexpected links %q", created.PullRequestsLinks)
	}
	if created.Status != task.StatusPending || created.CreatedBy != 1 || created.UserID != 1 {
		t.Fatalf("unexpected created task %+v", created)
	}
}

func TestUpdate(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("", "update", "1", "--status", "completed")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "Updated task #1 (COMPLETED)") {
		t.Fatalf("unexpected output %q", out)
	}
	if h.fake.lastPut["status"] != "completed" || h.fake.lastPut["title"] != "Fix login" {
		t.Fatalf("expected full record with new status, got %v", h.fake.lastPut)
	}
	if _, ok := h.fake.lastPut["username"]; ok {
		t.Fatalf("username must not be sent")
	}

	if _, err := h.run("", "update", "1", "--priority", "urgent"); err == nil {
		t.Fatalf("expected unknown priority error")
	}
}

func TestSearchOneShot(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("", "search", "docs")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `1 task(s) matching "docs"`) || !strings.Contains(out, "Write docs") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSearchInteractiveRunsTrailingQuery(t *testing.T) {
	h := newHarness(t, true)

	out, err := h.run("f\nfi\nfix\n", "search")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Fix login") {
		t.Fatalf("expected results for trailing query:\n%s", out)
	}
	if len(h.fake.queries) != 1 || h.fake.queries[0] != "fix" {
		t.Fatalf("expected a single search for the last input, got %v", h.fake.queries)
	}
}
