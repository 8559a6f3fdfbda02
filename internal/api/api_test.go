package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/buildservice"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/models"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	"github.com/ForestKatsch/apogee-ssg/internal/testutil"
)

var testFiles = map[string]string{
	"index.md":   "title = \"Home\"\n+++\n# Home",
	"posts/a.md": "title = \"A\"\ntags = [\"go\", \"web\"]\npublishDate = 2024-03-01\n+++\nneedle here",
	"posts/b.md": "title = \"B\"\ntags = [\"go\"]\ncategories = [\"notes\"]\n+++\nplain",
	"robots.txt": "User-agent: *",
}

// testEnv sets up a temp site, index DB, build service and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*buildservice.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*buildservice.Service, http.Handler) {
	t.Helper()
	dir, _ := testutil.TestSite(t, testFiles)
	source := func() (site.Config, string, error) { return testutil.SiteConfig(), dir, nil }
	svc := buildservice.NewService(source, handlers.Defaults(), buildservice.WithIndex(testutil.TestDB(t)))
	return svc, NewRouter(svc, authEnabled, authToken, sseHandler)
}

// builtEnv returns a router whose service already completed one build.
func builtEnv(t *testing.T) http.Handler {
	t.Helper()
	svc, router := testEnv(t, "")
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return router
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestTriggerBuildAndStatus(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(router, http.MethodPost, "/build")
	if w.Code != http.StatusOK {
		t.Fatalf("build status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[BuildResponse](t, w)
	if resp.Report == nil || resp.Report.Pages != 4 {
		t.Fatalf("report = %+v", resp.Report)
	}

	w = do(router, http.MethodGet, "/build")
	st := decode[models.BuildStatus](t, w)
	if st.Running || st.BuildID != resp.Report.BuildID || st.Pages != 4 {
		t.Errorf("status = %+v", st)
	}
}

func TestListPages(t *testing.T) {
	router := builtEnv(t)

	w := do(router, http.MethodGet, "/pages")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	all := decode[PageListResponse](t, w)
	// The static robots.txt is not listed.
	if all.Total != 3 || all.Pages[0].Path != "/posts/a" {
		t.Fatalf("pages = %+v", all.Pages)
	}

	tagged := decode[PageListResponse](t, do(router, http.MethodGet, "/pages?tag=go,web&all_tags=true"))
	if tagged.Total != 1 || tagged.Pages[0].Title != "A" {
		t.Errorf("all tags = %+v", tagged.Pages)
	}

	excluded := decode[PageListResponse](t, do(router, http.MethodGet, "/pages?tag=go&exclude_category=notes"))
	if excluded.Total != 1 || excluded.Pages[0].Path != "/posts/a" {
		t.Errorf("excluded = %+v", excluded.Pages)
	}

	limited := decode[PageListResponse](t, do(router, http.MethodGet, "/pages?limit=1"))
	if limited.Total != 1 {
		t.Errorf("limit = %d, want 1", limited.Total)
	}
}

func TestListPages_BeforeBuild(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(router, http.MethodGet, "/pages")
	if w.Code != http.StatusNotFound {
		t.Errorf("list before build = %d, want 404", w.Code)
	}
	if body := decode[errResponse](t, w); body.Kind != string(apperr.KindNotFound) {
		t.Errorf("kind = %q", body.Kind)
	}
}

func TestGetPage(t *testing.T) {
	router := builtEnv(t)

	w := do(router, http.MethodGet, "/pages/posts/a")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	detail := decode[PageDetail](t, w)
	if detail.Title != "A" || detail.OutputFile != "/posts/a/index.html" || detail.Source != "/posts/a.md" {
		t.Errorf("detail = %+v", detail)
	}

	// Encoded slashes from generated clients.
	if w := do(router, http.MethodGet, "/pages/posts%2Fb"); w.Code != http.StatusOK {
		t.Errorf("encoded get = %d", w.Code)
	}

	root := decode[PageDetail](t, do(router, http.MethodGet, "/pages/"))
	if root.Path != "/" || root.Title != "Home" {
		t.Errorf("root = %+v", root)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	router := builtEnv(t)

	w := do(router, http.MethodGet, "/pages/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", w.Code)
	}
	body := decode[errResponse](t, w)
	if body.Kind != string(apperr.KindNotFound) || body.Data["path"] != "/nope" {
		t.Errorf("body = %+v", body)
	}
}

func TestSearch(t *testing.T) {
	router := builtEnv(t)

	w := do(router, http.MethodGet, "/search?q=needle")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[SearchResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].Path != "/posts/a" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := do(router, http.MethodGet, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", w.Code)
	}
}

func TestSearch_NoIndex(t *testing.T) {
	dir, _ := testutil.TestSite(t, testFiles)
	source := func() (site.Config, string, error) { return testutil.SiteConfig(), dir, nil }
	router := NewRouter(buildservice.NewService(source, handlers.Defaults()), false, "", nil)

	if w := do(router, http.MethodGet, "/search?q=x"); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("search without index = %d, want 422", w.Code)
	}
}

// conflictService reports a running build for every Build call.
type conflictService struct{ Service }

func (conflictService) Build(context.Context) (*site.Report, error) {
	return nil, apperr.New(apperr.KindConflict, "a build is already running")
}

func TestBuild_Conflict(t *testing.T) {
	router := NewRouter(conflictService{}, false, "", nil)
	if w := do(router, http.MethodPost, "/build"); w.Code != http.StatusConflict {
		t.Errorf("concurrent build = %d, want 409", w.Code)
	}
}

func TestBuild_ConfigError(t *testing.T) {
	dir, _ := testutil.TestSite(t, testFiles)
	source := func() (site.Config, string, error) {
		cfg := testutil.SiteConfig()
		cfg.Transform.Operations = []string{"parse"}
		return cfg, dir, nil
	}
	router := NewRouter(buildservice.NewService(source, handlers.Defaults()), false, "", nil)

	w := do(router, http.MethodPost, "/build")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad config build = %d, want 422", w.Code)
	}
	if body := decode[errResponse](t, w); body.Kind != string(apperr.KindUnknownOperation) {
		t.Errorf("kind = %q", body.Kind)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/build", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed build = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := do(router, http.MethodGet, "/pages"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(router, http.MethodGet, "/build"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	// No token → 401.
	if w := do(router, http.MethodGet, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// The stub writes 200 and blocks until the request context ends.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a dummy SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	// Minimal SSE handler stub: writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	_, router := testEnvFull(t, authEnabled, token, sseHandler)
	return router
}
