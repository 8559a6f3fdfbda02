package site

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/tmpl"
)

// TransformFunc replaces a page's contents for one stage.
type TransformFunc func(ctx context.Context, p *Page, op string, in Contents) (Contents, error)

// GlobalFunc is a site-wide hook run once per stage.
type GlobalFunc func(ctx context.Context, op string) error

// RenderFunc produces one render variant of a page.
type RenderFunc func(ctx context.Context, p *Page, variant string) (tmpl.Result, error)

// Handler is a content handler. Implementations embed *Base, which supplies
// the callback tables and the default behavior of every method.
type Handler interface {
	Name() string
	Extensions() []string
	// Register declares transforms and render variants. It runs once, after
	// the handler has been added to the registry.
	Register(ctx context.Context) error
	// AddContent is called once per content file claimed by the handler and
	// creates its page.
	AddContent(contentPath string) error
	// Ingest reads a page's content file into its contents and frontmatter.
	Ingest(ctx context.Context, p *Page) error
	// Output persists a page.
	Output(ctx context.Context, p *Page) error
	// InheritPage adapts a page whose frontmatter moved it to this handler.
	InheritPage(ctx context.Context, p *Page) error

	base() *Base
}

// Base holds the state shared by every handler.
type Base struct {
	site       *Site
	name       string
	extensions []string
	options    map[string]any
	defaults   map[string]any
	outputName string

	transforms map[string]TransformFunc
	globals    map[string]GlobalFunc
	variants   map[string]RenderFunc

	self Handler
}

// NewBase creates the shared handler state. Handlers built on it write
// pages to "<path>/index.html" unless SetOutputName says otherwise.
func NewBase(s *Site, name string, options map[string]any, extensions []string) *Base {
	if options == nil {
		options = map[string]any{}
	}
	return &Base{
		site:       s,
		name:       name,
		extensions: append([]string(nil), extensions...),
		options:    options,
		defaults:   map[string]any{},
		outputName: "index.html",
		transforms: map[string]TransformFunc{},
		globals:    map[string]GlobalFunc{},
		variants:   map[string]RenderFunc{},
	}
}

func (b *Base) base() *Base { return b }

// Name returns the configured handler name.
func (b *Base) Name() string { return b.name }

// Extensions returns the claimed extensions.
func (b *Base) Extensions() []string { return append([]string(nil), b.extensions...) }

// Site returns the owning site.
func (b *Base) Site() *Site { return b.site }

// Logger returns the site logger tagged with the handler name.
func (b *Base) Logger() *slog.Logger { return b.site.logger.With(logging.Handler(b.name)) }

// Options returns the handler options from the configuration.
func (b *Base) Options() map[string]any { return b.options }

// Option returns one option value.
func (b *Base) Option(key string) (any, bool) {
	v, ok := b.options[key]
	return v, ok
}

// BoolOption returns a boolean option or def.
func (b *Base) BoolOption(key string, def bool) bool {
	if v, ok := b.options[key].(bool); ok {
		return v
	}
	return def
}

// StringOption returns a string option or def.
func (b *Base) StringOption(key, def string) string {
	if v, ok := b.options[key].(string); ok {
		return v
	}
	return def
}

// SetDefaults sets the metadata defaults layered under every page's
// frontmatter.
func (b *Base) SetDefaults(meta map[string]any) {
	b.defaults = meta
}

// Defaults returns the metadata defaults.
func (b *Base) Defaults() map[string]any { return b.defaults }

// SetOutputName sets the file name written under each page path. An empty
// name writes the page path itself.
func (b *Base) SetOutputName(name string) {
	b.outputName = name
}

// OutputName returns the file name written under each page path.
func (b *Base) OutputName() string { return b.outputName }

// AddTransform sets the per-page callback for op, replacing any previous
// one. op must be @start, @end or a configured operation.
func (b *Base) AddTransform(op string, fn TransformFunc) error {
	if err := b.site.ensureOperation(op); err != nil {
		return err
	}
	b.transforms[op] = fn
	return nil
}

// AddGlobalTransform sets a site-wide hook. op is a stage name, optionally
// suffixed "-pre" or "-post".
func (b *Base) AddGlobalTransform(op string, fn GlobalFunc) error {
	stage := strings.TrimSuffix(strings.TrimSuffix(op, "-pre"), "-post")
	if err := b.site.ensureOperation(stage); err != nil {
		return err
	}
	b.globals[op] = fn
	return nil
}

// AddRenderVariant sets the callback for variant.
func (b *Base) AddRenderVariant(variant string, fn RenderFunc) {
	b.variants[variant] = fn
}

// HasTransform reports whether a per-page callback exists for op.
func (b *Base) HasTransform(op string) bool {
	_, ok := b.transforms[op]
	return ok
}

// HasRenderVariant reports whether a callback exists for variant.
func (b *Base) HasRenderVariant(variant string) bool {
	_, ok := b.variants[variant]
	return ok
}

// Register is a no-op.
func (b *Base) Register(context.Context) error { return nil }

// AddContent creates the page from its file name.
func (b *Base) AddContent(contentPath string) error {
	_, err := b.site.CreatePageFromFilename(contentPath, b.self)
	return err
}

// Ingest warns; handlers are expected to override it.
func (b *Base) Ingest(_ context.Context, p *Page) error {
	b.Logger().Warn(fmt.Sprintf("content handler '%s' (as set in site configuration) should override 'Ingest'", b.name),
		logging.Page(p.SourcePath()))
	return nil
}

// Output warns; handlers are expected to override it.
func (b *Base) Output(_ context.Context, p *Page) error {
	b.Logger().Warn(fmt.Sprintf("content handler '%s' (as set in site configuration) should override 'Output'", b.name),
		logging.Page(p.SourcePath()))
	return nil
}

// InheritPage is a no-op.
func (b *Base) InheritPage(context.Context, *Page) error { return nil }

// register binds the handler and installs @render before the handler's own
// Register runs.
func (b *Base) register(ctx context.Context, h Handler) error {
	b.self = h
	if err := b.AddTransform(StageRender, b.renderTransform); err != nil {
		return err
	}
	return h.Register(ctx)
}

func (b *Base) renderTransform(ctx context.Context, p *Page, _ string, _ Contents) (Contents, error) {
	out, err := b.site.RenderPage(ctx, p, VariantPage)
	if err != nil {
		return nil, err
	}
	return Markup(out), nil
}

func (b *Base) runGlobal(ctx context.Context, op string) error {
	fn, ok := b.globals[op]
	if !ok {
		return nil
	}
	if err := fn(ctx, op); err != nil {
		return fmt.Errorf("handler '%s' %s hook: %w", b.name, op, err)
	}
	return nil
}

// transform runs the page callback for op. A missing callback leaves the
// page untouched.
func (b *Base) transform(ctx context.Context, p *Page, op string) error {
	fn, ok := b.transforms[op]
	if !ok {
		return nil
	}
	out, err := fn(ctx, p, op, p.contents)
	if err != nil {
		return fmt.Errorf("transform '%s' on '%s': %w", op, p.SourcePath(), err)
	}
	if out == nil {
		b.Logger().Warn(fmt.Sprintf("page contents are nil after running transform operation '%s' on '%s'", op, p.SourcePath()),
			logging.Stage(op), logging.Page(p.SourcePath()))
	}
	p.contents = out
	return nil
}

func (b *Base) render(ctx context.Context, p *Page, variant string) (string, error) {
	fn, ok := b.variants[variant]
	if !ok {
		b.Logger().Warn(fmt.Sprintf("content handler '%s' has not set a render handler for the '%s' variant (used on '%s')", b.name, variant, p.SourcePath()),
			logging.Page(p.SourcePath()))
		return "", nil
	}
	res, err := fn(ctx, p, variant)
	if err != nil {
		return "", fmt.Errorf("render '%s' on '%s': %w", variant, p.SourcePath(), err)
	}
	return res.String(), nil
}

var _ Handler = (*Base)(nil)
