// Package site implements the build orchestration of an apogee site: the
// content handler registry, the page registry and the staged transform
// pipeline that takes every page from ingest to output.
package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/limiter"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/metrics"
	"github.com/ForestKatsch/apogee-ssg/internal/storage"
)

// Site is one configured site and the pages of its current build.
type Site struct {
	logger    *slog.Logger
	factories Factories
	recorder  metrics.Recorder

	config      Config
	configured  bool
	contentRoot string
	outputRoot  string
	staticRoot  string
	content     storage.Provider
	output      storage.Provider

	handlers *Registry
	limiter  *limiter.Limiter

	mu    sync.RWMutex
	pages map[string]*Page
	order []*Page
}

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFactories sets the handler types available to the configuration.
func WithFactories(f Factories) Option {
	return func(s *Site) {
		s.factories = f
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates an unconfigured Site.
func New(opts ...Option) *Site {
	s := &Site{
		logger:    logging.Discard(),
		factories: Factories{},
		recorder:  metrics.NoopRecorder{},
		config:    DefaultConfig(),
		handlers:  NewRegistry(),
		limiter:   limiter.New(limiter.DefaultMax),
		pages:     map[string]*Page{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure applies cfg, discarding every handler and page, then creates
// and registers the configured handlers in name order. Relative roots are
// resolved against baseDir, normally the directory of the configuration
// file.
func (s *Site) Configure(ctx context.Context, cfg Config, baseDir string) error {
	if err := cfg.Validate(); err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return err
		}
		return apperr.Wrap(err, apperr.KindConfig, "invalid site configuration")
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return apperr.Wrap(err, apperr.KindConfig, "resolve configuration directory")
	}
	contentRoot := resolve(base, cfg.Content.Path)
	outputRoot := resolve(base, cfg.Output.Path)
	staticRoot := resolve(base, cfg.Static.Path)

	if err := storage.CheckReadable(contentRoot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.Wrap(err, apperr.KindConfig, "content directory '%s' does not exist", contentRoot)
		}
		return apperr.Wrap(err, apperr.KindPermission,
			"content directory read permission denied; make sure to allow read access to the content directory").
			With("path", contentRoot)
	}
	if err := storage.CheckWritable(outputRoot); err != nil {
		return apperr.Wrap(err, apperr.KindPermission,
			"output directory write permission denied; make sure to allow write access to the output directory").
			With("path", outputRoot)
	}
	content, err := storage.NewFS(contentRoot)
	if err != nil {
		return apperr.Wrap(err, apperr.KindConfig, "open content directory")
	}
	output, err := storage.CreateFS(outputRoot)
	if err != nil {
		return apperr.Wrap(err, apperr.KindPermission, "open output directory")
	}

	s.handlers.RemoveAll()
	s.removeAllPages()

	s.config = cfg
	s.contentRoot, s.outputRoot, s.staticRoot = contentRoot, outputRoot, staticRoot
	s.content, s.output = content, output
	s.limiter = limiter.New(cfg.Build.Concurrency)
	s.configured = true

	names := make([]string, 0, len(cfg.Handlers))
	for name := range cfg.Handlers {
		names = append(names, name)
	}
	slices.Sort(names)

	s.logger.Debug("importing handlers", slog.Int("count", len(names)))
	for _, name := range names {
		hc := cfg.Handlers[name]
		typ := hc.Type(name)
		factory, ok := s.factories[typ]
		if !ok {
			return apperr.New(apperr.KindUnknownHandler,
				"cannot find handler type '%s' for handler '%s'", typ, name).
				With("handler", name).With("type", typ)
		}
		s.logger.Debug("creating handler", logging.Handler(name), slog.String("type", typ))
		h, err := factory(s, name, hc.Options, hc.Extensions)
		if err != nil {
			return apperr.Wrap(err, apperr.KindConfig, "could not create handler '%s'", name).With("handler", name)
		}
		if err := s.handlers.Add(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// LoadConfig loads filename and configures the site from it.
func (s *Site) LoadConfig(ctx context.Context, filename string) error {
	s.logger.Debug("loading config file", slog.String("path", filename))
	cfg, err := LoadConfig(filename)
	if err != nil {
		return err
	}
	return s.Configure(ctx, cfg, filepath.Dir(filename))
}

// Config returns the applied configuration.
func (s *Site) Config() Config { return s.config }

// Title returns the site title.
func (s *Site) Title() string { return s.config.Site.Title }

// URL returns the site base URL.
func (s *Site) URL() string { return s.config.Site.URL }

// Logger returns the site logger.
func (s *Site) Logger() *slog.Logger { return s.logger }

// Handlers returns the handler registry.
func (s *Site) Handlers() *Registry { return s.handlers }

// Limiter returns the limiter bounding page tasks.
func (s *Site) Limiter() *limiter.Limiter { return s.limiter }

// ContentRoot returns the absolute content directory.
func (s *Site) ContentRoot() string { return s.contentRoot }

// OutputRoot returns the absolute output directory.
func (s *Site) OutputRoot() string { return s.outputRoot }

// StaticRoot returns the absolute static source directory.
func (s *Site) StaticRoot() string { return s.staticRoot }

// StaticOutputRoot returns the absolute directory static files are copied to.
func (s *Site) StaticOutputRoot() string {
	return filepath.Join(s.outputRoot, filepath.FromSlash(s.config.Static.Output))
}

// Operations returns the configured stages, without @start and @end.
func (s *Site) Operations() []string {
	return append([]string(nil), s.config.Transform.Operations...)
}

// Stages returns the effective stage order: @start, the operations, @end.
func (s *Site) Stages() []string {
	out := make([]string, 0, len(s.config.Transform.Operations)+2)
	out = append(out, StageStart)
	out = append(out, s.config.Transform.Operations...)
	return append(out, StageEnd)
}

func (s *Site) ensureOperation(op string) error {
	if op == StageStart || op == StageEnd || slices.Contains(s.config.Transform.Operations, op) {
		return nil
	}
	return apperr.New(apperr.KindUnknownOperation,
		"site configuration does not specify required operation '%s' in transform.operations array", op).
		With("operation", op)
}

// ReadContent reads the content file of p.
func (s *Site) ReadContent(p *Page) ([]byte, error) {
	if !p.HasContent() {
		return nil, apperr.New(apperr.KindNoContentPath, "page '%s' has no content file to read", p.path)
	}
	return s.readContent(p.contentPath)
}

func (s *Site) readContent(contentPath string) ([]byte, error) {
	data, err := s.content.Read(contentPath)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, apperr.Wrap(err, apperr.KindPermission, "content file '%s' read permission denied", contentPath)
		}
		return nil, err
	}
	return data, nil
}

// ReadContentFile reads a content-root-relative file, returning
// apperr.ErrNotFound when it does not exist.
func (s *Site) ReadContentFile(contentPath string) ([]byte, error) {
	data, err := s.readContent(contentPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(err, apperr.KindNotFound, "content file '%s' does not exist", contentPath)
	}
	return data, err
}

// WriteOutput writes data to the output file of p.
func (s *Site) WriteOutput(p *Page, data []byte) error {
	if err := s.output.Write(p.OutputFile(), data); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return apperr.Wrap(err, apperr.KindPermission, "output file '%s' write permission denied", p.OutputFile())
		}
		return err
	}
	return nil
}
