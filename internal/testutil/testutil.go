// Package testutil provides shared test helpers for setting up sites and databases.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/index"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// TestDB creates a temporary index database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteTree writes files (slash-separated names) under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// SiteConfig returns a configuration with a markdown handler for ".md" and
// a passthrough handler for ".txt", rendering only.
func SiteConfig() site.Config {
	cfg := site.DefaultConfig()
	cfg.Site.Title = "Test Site"
	cfg.Transform.Operations = []string{site.StageRender}
	cfg.Handlers = map[string]site.HandlerConfig{
		"markdown":    {Extensions: []string{".md"}},
		"passthrough": {Extensions: []string{".txt"}},
	}
	return cfg
}

// TestSite creates a site directory holding content files and returns it
// with a configured Site built from SiteConfig.
func TestSite(t *testing.T, files map[string]string) (string, *site.Site) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
		t.Fatal(err)
	}
	WriteTree(t, filepath.Join(dir, "content"), files)

	s := site.New(site.WithFactories(handlers.Defaults()))
	if err := s.Configure(context.Background(), SiteConfig(), dir); err != nil {
		t.Fatal(err)
	}
	return dir, s
}
