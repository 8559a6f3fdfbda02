// Package passthrough copies content files to the output tree unchanged.
//
// Pages keep their extension ("/robots.txt") and default to static, so
// listings skip them. Metadata may come from a sidecar "<file>.toml".
package passthrough

import (
	"context"
	"errors"
	"path"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	"github.com/ForestKatsch/apogee-ssg/internal/tmpl"
)

// Type is the handler type name.
const Type = "passthrough"

// Handler writes content bytes verbatim.
type Handler struct {
	*site.Base
}

// New creates a passthrough handler.
func New(s *site.Site, name string, options map[string]any, extensions []string) (site.Handler, error) {
	h := &Handler{Base: site.NewBase(s, name, options, extensions)}
	h.SetOutputName("")
	h.SetDefaults(map[string]any{site.MetaStatic: true})
	return h, nil
}

// Register installs the @page variant.
func (h *Handler) Register(context.Context) error {
	h.AddRenderVariant(site.VariantPage, render)
	return nil
}

// AddContent creates the page at the content path itself.
func (h *Handler) AddContent(contentPath string) error {
	_, err := h.Site().CreatePage(path.Join("/", contentPath), h, contentPath)
	return err
}

// Ingest reads the file and its optional sidecar metadata.
func (h *Handler) Ingest(_ context.Context, p *site.Page) error {
	data, err := h.Site().ReadContent(p)
	if err != nil {
		return err
	}
	p.SetContents(site.Bytes(data))

	sidecar, err := p.MetadataPath()
	if err != nil {
		return err
	}
	meta, err := h.Site().ReadContentFile(sidecar)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return p.ParseMeta(string(meta))
}

// InheritPage turns a page ingested as text into bytes. A page whose path
// dropped the extension ("/" for "/index.md") is written to its content path.
func (h *Handler) InheritPage(_ context.Context, p *site.Page) error {
	if t, ok := p.Contents().(site.Text); ok {
		p.SetContents(site.Bytes(t))
	}
	if p.HasContent() && path.Ext(p.Path()) == "" {
		p.SetOutputFile(p.ContentPath())
	}
	return nil
}

// Output writes the page contents to its path.
func (h *Handler) Output(_ context.Context, p *site.Page) error {
	var data []byte
	if c, ok := p.Contents().(site.Writable); ok {
		data = c.Bytes()
	}
	return h.Site().WriteOutput(p, data)
}

func render(_ context.Context, p *site.Page, _ string) (tmpl.Result, error) {
	if c, ok := p.Contents().(site.Writable); ok {
		return tmpl.Raw(string(c.Bytes())), nil
	}
	return tmpl.Empty, nil
}
