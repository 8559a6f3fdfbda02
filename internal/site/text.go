package site

import (
	"context"
	"fmt"

	"github.com/ForestKatsch/apogee-ssg/internal/frontmatter"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
)

// TextHandler reads content files as UTF-8 text with a frontmatter block
// and writes rendered contents to "<path>/index.html".
type TextHandler struct {
	*Base
}

// NewTextHandler creates a TextHandler.
func NewTextHandler(s *Site, name string, options map[string]any, extensions []string) *TextHandler {
	return &TextHandler{Base: NewBase(s, name, options, extensions)}
}

// Ingest reads the content file, parses its frontmatter and stores the body
// as Text.
func (h *TextHandler) Ingest(_ context.Context, p *Page) error {
	data, err := h.site.ReadContent(p)
	if err != nil {
		return err
	}
	meta, body := frontmatter.Split(string(data))
	if err := p.ParseMeta(meta); err != nil {
		return err
	}
	p.SetContents(Text(body))
	return nil
}

// Output writes the page contents verbatim. Nil contents produce an empty
// file.
func (h *TextHandler) Output(_ context.Context, p *Page) error {
	var data []byte
	switch c := p.Contents().(type) {
	case nil:
	case Writable:
		data = c.Bytes()
	default:
		return fmt.Errorf("cannot output '%s' contents of page '%s'; is '%s' in transform.operations?",
			c.Kind(), p.SourcePath(), StageRender)
	}
	h.Logger().Debug(fmt.Sprintf("outputting page '%s' to '%s'", p.SourcePath(), p.FilesystemOutputPath()),
		logging.Page(p.SourcePath()))
	return h.site.WriteOutput(p, data)
}
