// Package markdown is the Markdown content handler, rendered with goldmark.
//
// Options:
//
//	gfm         bool    GitHub Flavored Markdown (default true)
//	hard_wraps  bool    render newlines as <br> (default false)
//	unsafe      bool    pass raw HTML through (default false)
//	parse_stage string  stage at which Text is parsed into a Document
//	nav         array   [{title = "...", path = "/..."}] header links
package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// Type is the handler type name.
const Type = "markdown"

// Document is parsed Markdown: the AST and the source it points into.
type Document struct {
	Source []byte
	Root   ast.Node
}

func (Document) Kind() string { return "markdown" }

// NavItem is one header link.
type NavItem struct {
	Title string
	Path  string
}

// Handler renders Markdown pages to HTML.
type Handler struct {
	*site.TextHandler

	md         goldmark.Markdown
	parseStage string
	nav        []NavItem
}

// New creates a Markdown handler.
func New(s *site.Site, name string, options map[string]any, extensions []string) (site.Handler, error) {
	h := &Handler{TextHandler: site.NewTextHandler(s, name, options, extensions)}

	var exts []goldmark.Extender
	if h.BoolOption("gfm", true) {
		exts = append(exts, extension.GFM)
	}
	var rendererOpts []renderer.Option
	if h.BoolOption("hard_wraps", false) {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}
	if h.BoolOption("unsafe", false) {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
	}
	h.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	h.parseStage = h.StringOption("parse_stage", "")

	nav, err := parseNav(options["nav"])
	if err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	h.nav = nav
	return h, nil
}

func parseNav(v any) ([]NavItem, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("option 'nav' must be an array of tables")
	}
	out := make([]NavItem, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("option 'nav' entry %d must be a table", i)
		}
		title, _ := m["title"].(string)
		p, _ := m["path"].(string)
		if title == "" || p == "" {
			return nil, fmt.Errorf("option 'nav' entry %d needs title and path", i)
		}
		out = append(out, NavItem{Title: title, Path: p})
	}
	return out, nil
}

// Register installs the @page variant and, when configured, the parse
// transform.
func (h *Handler) Register(context.Context) error {
	h.AddRenderVariant(site.VariantPage, h.renderPage)
	if h.parseStage != "" {
		if err := h.AddTransform(h.parseStage, h.parse); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) parse(_ context.Context, _ *site.Page, _ string, in site.Contents) (site.Contents, error) {
	src, ok := in.(site.Text)
	if !ok {
		return in, nil
	}
	return h.Parse([]byte(src)), nil
}

// Parse parses Markdown source into a Document.
func (h *Handler) Parse(src []byte) Document {
	return Document{Source: src, Root: h.md.Parser().Parse(text.NewReader(src))}
}

// RenderBody converts the page contents to HTML.
func (h *Handler) RenderBody(p *site.Page) (string, error) {
	var buf bytes.Buffer
	switch c := p.Contents().(type) {
	case nil:
		return "", nil
	case site.Text:
		if err := h.md.Convert([]byte(c), &buf); err != nil {
			return "", fmt.Errorf("markdown: convert '%s': %w", p.SourcePath(), err)
		}
	case Document:
		if err := h.md.Renderer().Render(&buf, c.Source, c.Root); err != nil {
			return "", fmt.Errorf("markdown: render '%s': %w", p.SourcePath(), err)
		}
	case site.Markup:
		return string(c), nil
	default:
		return "", fmt.Errorf("markdown: cannot render '%s' contents of '%s'", c.Kind(), p.SourcePath())
	}
	return buf.String(), nil
}

// source returns the Markdown source of the page, if it still has it.
func source(p *site.Page) string {
	switch c := p.Contents().(type) {
	case site.Text:
		return string(c)
	case Document:
		return string(c.Source)
	}
	return ""
}
