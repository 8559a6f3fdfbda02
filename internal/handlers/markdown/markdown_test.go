package markdown_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers/markdown"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

func newSite(t *testing.T, files map[string]string, options map[string]any, ops []string) (*site.Site, string) {
	t.Helper()
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(content, 0o755))
	for name, body := range files {
		p := filepath.Join(content, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := site.DefaultConfig()
	cfg.Site.Title = "Test Site"
	if ops == nil {
		ops = []string{site.StageRender}
	}
	cfg.Transform.Operations = ops
	cfg.Handlers = map[string]site.HandlerConfig{
		"md": {Extensions: []string{".md"}, Handler: markdown.Type, Options: options},
	}

	s := site.New(site.WithFactories(handlers.Defaults()))
	require.NoError(t, s.Configure(context.Background(), cfg, dir))
	return s, dir
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "dist", filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestBuild_EndToEnd(t *testing.T) {
	s, dir := newSite(t, map[string]string{
		"index.md": "title = \"Home\"\n+++\n# Hi",
		"about.md": "# About *us*\n\nHello & welcome.",
	}, nil, nil)

	report, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)

	home := readOutput(t, dir, "index.html")
	assert.Contains(t, home, "<title>Home</title>")
	assert.Contains(t, home, `<h1 id="hi">Hi</h1>`)
	assert.Contains(t, home, `href="static/style.css"`)

	about := readOutput(t, dir, "about/index.html")
	assert.Contains(t, about, "<title>About *us*</title>")
	assert.Contains(t, about, "<em>us</em>")
	assert.Contains(t, about, "Hello &amp; welcome.")
	assert.Contains(t, about, `href="../static/style.css"`)
	assert.Contains(t, about, "<code>/about.md</code>")
}

func TestTitle_Fallbacks(t *testing.T) {
	s, _ := newSite(t, map[string]string{
		"index.md":         "no heading",
		"my-first_post.md": "plain text",
		"headed.md":        "intro\n\n# From Heading\n",
		"titled.md":        "title = \"From Meta\"\n+++\n# Ignored",
	}, nil, nil)
	files, err := s.CollectContent()
	require.NoError(t, err)
	require.NoError(t, s.AddContent(files))
	require.NoError(t, s.Ingest(context.Background()))

	for path, want := range map[string]string{
		"/":              "Test Site",
		"/my-first_post": "My First Post",
		"/headed":        "From Heading",
		"/titled":        "From Meta",
	} {
		p, err := s.Page(path)
		require.NoError(t, err)
		assert.Equal(t, want, markdown.Title(p), path)
	}
}

func TestParseStage(t *testing.T) {
	s, dir := newSite(t, map[string]string{"a.md": "title = \"A\"\n+++\n| x |\n|---|\n| 1 |"},
		map[string]any{"parse_stage": "parse"}, []string{"parse", site.StageRender})

	require.NoError(t, s.AddContent([]string{"/a.md"}))
	require.NoError(t, s.Ingest(context.Background()))
	require.NoError(t, s.TransformStage(context.Background(), site.StageStart))
	require.NoError(t, s.TransformStage(context.Background(), "parse"))

	p, err := s.Page("/a")
	require.NoError(t, err)
	doc, ok := p.Contents().(markdown.Document)
	require.True(t, ok)
	assert.Equal(t, "markdown", doc.Kind())

	require.NoError(t, s.TransformStage(context.Background(), site.StageRender))
	require.NoError(t, s.TransformStage(context.Background(), site.StageEnd))
	require.NoError(t, s.Output(context.Background()))
	assert.Contains(t, readOutput(t, dir, "a/index.html"), "<table>")
}

func TestOptions(t *testing.T) {
	s, dir := newSite(t, map[string]string{
		"a.md": "title = \"A\"\n+++\nline one\nline two\n\n<div class=\"raw\">x</div>",
	}, map[string]any{
		"hard_wraps": true,
		"unsafe":     true,
		"nav":        []any{map[string]any{"title": "Blog", "path": "/blog"}},
	}, nil)

	_, err := s.Build(context.Background())
	require.NoError(t, err)
	out := readOutput(t, dir, "a/index.html")
	assert.Contains(t, out, "line one<br")
	assert.Contains(t, out, `<div class="raw">x</div>`)
	assert.Contains(t, out, `<a class="page-header__nav" href="../blog">Blog</a>`)
}

func TestOptions_BadNav(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o755))
	cfg := site.DefaultConfig()
	cfg.Transform.Operations = []string{site.StageRender}
	cfg.Handlers = map[string]site.HandlerConfig{
		"md": {Extensions: []string{".md"}, Handler: markdown.Type, Options: map[string]any{"nav": "nope"}},
	}
	s := site.New(site.WithFactories(handlers.Defaults()))
	assert.Error(t, s.Configure(context.Background(), cfg, dir))
}

func TestListing(t *testing.T) {
	s, dir := newSite(t, map[string]string{
		"index.md":     "title = \"Home\"\n[list]\ntags = [\"news\"]\nlimit = 2\n+++\n# Home",
		"one.md":       "title = \"One\"\ntags = [\"news\"]\npublishDate = 2022-01-01\n+++\n",
		"two.md":       "title = \"Two <b>\"\ntags = [\"news\"]\npublishDate = 2022-02-01\n+++\n",
		"three.md":     "title = \"Three\"\ntags = [\"news\"]\npublishDate = 2021-01-01\n+++\n",
		"unrelated.md": "title = \"Other\"\ntags = [\"misc\"]\n+++\n",
	}, nil, nil)

	_, err := s.Build(context.Background())
	require.NoError(t, err)
	home := readOutput(t, dir, "index.html")
	assert.Contains(t, home, `<a href="two">Two &lt;b&gt;</a> <time datetime="2022-02-01T00:00:00Z">2022-02-01</time>`)
	assert.Contains(t, home, `<a href="one">One</a>`)
	assert.NotContains(t, home, "Three")
	assert.NotContains(t, home, "Other")
}

func TestCriteria(t *testing.T) {
	c := markdown.Criteria(map[string]any{
		"tags":         []any{"a", "b"},
		"all_tags":     true,
		"exclude_tags": "hidden",
		"limit":        int64(5),
	})
	assert.Equal(t, []string{"a", "b"}, c.Include.Tags)
	assert.True(t, c.Include.AllTags)
	assert.Equal(t, []string{"hidden"}, c.Exclude.Tags)
	assert.Equal(t, 5, c.Limit)
}

func TestHead_MetaTags(t *testing.T) {
	s, dir := newSite(t, map[string]string{
		"a.md": "title = \"A\"\nauthor = \"Ada & co\"\ntags = [\"go\", \"web\"]\ndescription = \"About <A>\"\n+++\nbody",
		"b.md": "title = \"B\"\n+++\nbody",
	}, nil, nil)

	_, err := s.Build(context.Background())
	require.NoError(t, err)

	a := readOutput(t, dir, "a/index.html")
	assert.Contains(t, a, `<meta name="description" content="About &lt;A&gt;" />`)
	assert.Contains(t, a, `<meta name="author" content="Ada &amp; co" />`)
	assert.Contains(t, a, `<meta name="keywords" content="go, web" />`)

	b := readOutput(t, dir, "b/index.html")
	assert.NotContains(t, b, `<meta name=`)
	assert.Contains(t, b, "<title>B</title>")
}
