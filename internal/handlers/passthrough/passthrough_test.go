package passthrough_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers/markdown"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers/passthrough"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

func setup(t *testing.T, files map[string]string) (*site.Site, string) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, "content", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := site.DefaultConfig()
	cfg.Transform.Operations = []string{site.StageRender}
	cfg.Handlers = map[string]site.HandlerConfig{
		"files": {Extensions: []string{".txt", ".png"}, Handler: passthrough.Type},
		"md":    {Extensions: []string{".md"}, Handler: markdown.Type},
	}
	s := site.New(site.WithFactories(handlers.Defaults()))
	require.NoError(t, s.Configure(context.Background(), cfg, dir))
	return s, dir
}

func TestPassthrough_CopiesBytes(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n\x00\x01"
	s, dir := setup(t, map[string]string{
		"robots.txt":        "User-agent: *\n+++\nnot frontmatter",
		"img/logo.png":      png,
		"img/logo.png.toml": "title = \"Logo\"\ntags = [\"brand\"]",
	})

	_, err := s.Build(context.Background())
	require.NoError(t, err)

	robots, err := os.ReadFile(filepath.Join(dir, "dist", "robots.txt"))
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\n+++\nnot frontmatter", string(robots))

	logo, err := os.ReadFile(filepath.Join(dir, "dist", "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, png, string(logo))

	p, err := s.Page("/img/logo.png")
	require.NoError(t, err)
	m := p.Meta()
	assert.Equal(t, "Logo", m.Title)
	assert.Equal(t, []string{"brand"}, m.Tags)
	assert.True(t, m.Static)
	assert.Empty(t, s.FindPages(site.Criteria{}))
}

func TestPassthrough_Inherit(t *testing.T) {
	s, dir := setup(t, map[string]string{
		"raw.md": "handler = \"files\"\n+++\n# kept as is",
	})

	_, err := s.Build(context.Background())
	require.NoError(t, err)

	p, err := s.Page("/raw")
	require.NoError(t, err)
	assert.Equal(t, "files", p.Handler().Name())

	assert.Equal(t, "/raw.md", p.OutputFile())

	data, err := os.ReadFile(filepath.Join(dir, "dist", "raw.md"))
	require.NoError(t, err)
	assert.Equal(t, "# kept as is", string(data))
}

func TestPassthrough_InheritRootPage(t *testing.T) {
	s, dir := setup(t, map[string]string{
		"index.md":      "handler = \"files\"\n+++\n# raw home",
		"notes/raw.md":  "handler = \"files\"\n+++\nraw note",
		"notes/page.md": "title = \"Page\"\n+++\n# rendered",
	})

	_, err := s.Build(context.Background())
	require.NoError(t, err)

	home, err := os.ReadFile(filepath.Join(dir, "dist", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# raw home", string(home))

	note, err := os.ReadFile(filepath.Join(dir, "dist", "notes", "raw.md"))
	require.NoError(t, err)
	assert.Equal(t, "raw note", string(note))

	_, err = os.Stat(filepath.Join(dir, "dist", "notes", "page", "index.html"))
	assert.NoError(t, err)
}

func TestPassthrough_BadSidecar(t *testing.T) {
	s, _ := setup(t, map[string]string{
		"a.txt":      "x",
		"a.txt.toml": "title = ",
	})
	_, err := s.Build(context.Background())
	assert.Error(t, err)
}
