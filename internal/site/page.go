package site

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/frontmatter"
)

// State is the lifecycle position of a page.
type State int

const (
	StateCreated State = iota
	StateIngested
	StateTransformed
	StateRendered
	StateOutput
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateIngested:
		return "ingested"
	case StateTransformed:
		return "transformed"
	case StateRendered:
		return "rendered"
	case StateOutput:
		return "output"
	}
	return "unknown"
}

// Page is one unit of output, identified by its absolute output path.
type Page struct {
	site        *Site
	path        string
	contentPath string
	handler     Handler

	frontmatter map[string]any
	contents    Contents

	state      State
	stage      string
	outputTime time.Time
	// outputFile overrides the file derived from the handler's output name.
	outputFile string
}

// Path returns the slash-rooted output path ("/", "/a", "/a/b").
func (p *Page) Path() string { return p.path }

// ContentPath returns the content file relative to the content root with a
// leading "/", or "" for synthetic pages.
func (p *Page) ContentPath() string { return p.contentPath }

// HasContent reports whether the page was created from a content file.
func (p *Page) HasContent() bool { return p.contentPath != "" }

// SourcePath is the content path, or the output path for synthetic pages.
func (p *Page) SourcePath() string {
	if p.contentPath != "" {
		return p.contentPath
	}
	return p.path
}

// Site returns the owning site.
func (p *Page) Site() *Site { return p.site }

// Handler returns the owning handler.
func (p *Page) Handler() Handler { return p.handler }

// Contents returns the working payload.
func (p *Page) Contents() Contents { return p.contents }

// SetContents replaces the working payload.
func (p *Page) SetContents(c Contents) { p.contents = c }

// State returns the lifecycle state.
func (p *Page) State() State { return p.state }

// Stage returns the last transform stage the page completed.
func (p *Page) Stage() string { return p.stage }

// OutputTime returns when output last completed, or the zero time.
func (p *Page) OutputTime() time.Time { return p.outputTime }

// Frontmatter returns the page's own metadata layer.
func (p *Page) Frontmatter() map[string]any { return p.frontmatter }

// SetFrontmatter replaces the page's own metadata layer.
func (p *Page) SetFrontmatter(meta map[string]any) { p.frontmatter = meta }

// ParseMeta parses a TOML metadata block into the page's frontmatter.
func (p *Page) ParseMeta(text string) error {
	meta, err := frontmatter.Parse(text)
	if err != nil {
		var pe *frontmatter.ParseError
		if errors.As(err, &pe) {
			return apperr.Wrap(err, apperr.KindParse, "could not parse metadata for page '%s'", p.SourcePath()).
				With("page", p.SourcePath()).With("line", pe.Line).With("column", pe.Column)
		}
		return apperr.Wrap(err, apperr.KindParse, "could not parse metadata for page '%s'", p.SourcePath())
	}
	p.frontmatter = meta
	return nil
}

// ContentFilename returns the content file's filesystem path.
func (p *Page) ContentFilename() (string, error) {
	if p.contentPath == "" {
		return "", apperr.New(apperr.KindNoContentPath,
			"cannot get absolute content filename for page '%s' without a content filename set", p.path)
	}
	return filepath.Join(p.site.contentRoot, filepath.FromSlash(p.contentPath)), nil
}

// MetadataPath returns the content-relative path of the page's sidecar
// metadata file ("<content path>.toml").
func (p *Page) MetadataPath() (string, error) {
	if p.contentPath == "" {
		return "", apperr.New(apperr.KindNoContentPath,
			"cannot get metadata filename for page '%s' without a content filename set", p.path)
	}
	return p.contentPath + ".toml", nil
}

// OutputFile returns the output-root-relative file the page writes, such as
// "/falcon9/index.html".
func (p *Page) OutputFile() string {
	if p.outputFile != "" {
		return p.outputFile
	}
	name := ""
	if p.handler != nil {
		name = p.handler.base().outputName
	}
	if name == "" {
		return p.path
	}
	return path.Join(p.path, name)
}

// SetOutputFile pins the output-root-relative file the page writes.
func (p *Page) SetOutputFile(file string) {
	p.outputFile = path.Join("/", file)
}

// FilesystemOutputPath returns the filesystem path of OutputFile.
func (p *Page) FilesystemOutputPath() string {
	return filepath.Join(p.site.outputRoot, filepath.FromSlash(p.OutputFile()))
}

// Link returns target, an output path, relative to this page. With
// absolute, the site URL joined with target is returned instead.
func (p *Page) Link(target string, absolute bool) string {
	target = path.Join("/", target)
	if absolute {
		return strings.TrimSuffix(p.site.config.Site.URL, "/") + target
	}
	return relative(path.Dir(p.OutputFile()), target)
}

// LinkTo links to another page.
func (p *Page) LinkTo(other *Page, absolute bool) string {
	return p.Link(other.path, absolute)
}

// Static returns the link to a file under the static output directory.
func (p *Page) Static(file string) string {
	return relative(path.Dir(p.OutputFile()), path.Join("/", p.site.config.Static.Output, file))
}

func relative(from, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return to
	}
	return filepath.ToSlash(rel)
}
