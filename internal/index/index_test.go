package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&count); err != nil {
		t.Fatalf("pages table missing: %v", err)
	}
}

func TestReplaceAndGet(t *testing.T) {
	db := testDB(t)
	published := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	rows := []PageRow{
		{Path: "/", Title: "Home", Source: "/index.md", Handler: "md", Checksum: "abc", Body: "welcome home"},
		{Path: "/post", Title: "Post", Tags: []string{"go"}, PublishDate: published, Body: "a post"},
	}
	if err := db.Replace("b1", rows); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := db.GetPage("/post")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Title != "Post" || len(got.Tags) != 1 || got.Tags[0] != "go" {
		t.Errorf("page = %+v", got)
	}
	if !got.PublishDate.Equal(published) {
		t.Errorf("publish date = %v, want %v", got.PublishDate, published)
	}
	if got.BuildID != "b1" {
		t.Errorf("build id = %q", got.BuildID)
	}
	home, _ := db.GetPage("/")
	if !home.PublishDate.IsZero() || home.Categories == nil {
		t.Errorf("home = %+v", home)
	}
}

func TestReplaceDropsOldRows(t *testing.T) {
	db := testDB(t)
	_ = db.Replace("b1", []PageRow{{Path: "/old"}, {Path: "/kept"}})
	if err := db.Replace("b2", []PageRow{{Path: "/kept"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := db.GetPage("/old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetPage(/old) err = %v, want not found", err)
	}
	n, _ := db.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	id, _ := db.BuildID()
	if id != "b2" {
		t.Errorf("build id = %q, want b2", id)
	}
}

func TestBuildID_Empty(t *testing.T) {
	db := testDB(t)
	id, err := db.BuildID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty build id, got %q", id)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.Replace("b1", []PageRow{{Path: "/s", Title: "Search Me", Body: "uniqueword appears here"}, {Path: "/t", Body: "other"}})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/s" {
		t.Errorf("search results = %+v, want 1 hit for /s", results)
	}
}

func TestExtract(t *testing.T) {
	title, text := Extract(`<!doctype html><html><head><title>A &amp; B</title>
<style>body { color: red }</style></head>
<body><h1>Hello</h1>
<p>some   <em>text</em></p><script>var x = 1;</script></body></html>`)
	if title != "A & B" {
		t.Errorf("title = %q", title)
	}
	if text != "Hello some text" {
		t.Errorf("text = %q", text)
	}
}

func TestSync_FromBuild(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.md":   "title = \"Home\"\ntags = [\"x\"]\n+++\n# Home\n\nfindme here",
		"about.md":   "# About",
		"robots.txt": "User-agent: *",
	}
	for name, body := range files {
		p := filepath.Join(dir, "content", name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := site.DefaultConfig()
	cfg.Transform.Operations = []string{site.StageRender}
	cfg.Handlers = map[string]site.HandlerConfig{
		"markdown":    {Extensions: []string{".md"}},
		"passthrough": {Extensions: []string{".txt"}},
	}
	s := site.New(site.WithFactories(handlers.Defaults()))
	if err := s.Configure(context.Background(), cfg, dir); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	db := testDB(t)
	if err := Sync(db, s, report.BuildID, logging.Discard()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	n, _ := db.Count()
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	about, err := db.GetPage("/about")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if about.Title != "About" {
		t.Errorf("title from markup = %q, want About", about.Title)
	}
	if about.Checksum == "" || about.Handler != "markdown" || about.Source != "/about.md" {
		t.Errorf("about = %+v", about)
	}

	robots, _ := db.GetPage("/robots.txt")
	if robots.Body != "" {
		t.Errorf("static page body = %q, want empty", robots.Body)
	}

	results, _ := db.Search("findme", 10)
	if len(results) != 1 || results[0].Path != "/" {
		t.Errorf("search = %+v", results)
	}
}
