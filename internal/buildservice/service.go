// Package buildservice serializes site builds and keeps the result of the
// last completed build for the preview surfaces.
package buildservice

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/index"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/metrics"
	"github.com/ForestKatsch/apogee-ssg/internal/models"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	"github.com/ForestKatsch/apogee-ssg/internal/sse"
)

// ConfigSource returns the site configuration for the next build and the
// directory its relative paths resolve against. It is called once per
// build, so configuration edits apply on the next rebuild.
type ConfigSource func() (site.Config, string, error)

// Publisher receives build lifecycle events.
type Publisher interface {
	PublishBuildEvent(kind string, data any)
}

// Service coordinates builds, the page index and event fan-out.
type Service struct {
	source    ConfigSource
	factories site.Factories
	db        index.PageIndex
	events    Publisher
	recorder  metrics.Recorder
	logger    *slog.Logger

	running atomic.Bool

	mu      sync.RWMutex
	current *site.Site
	report  *site.Report
	rows    map[string]index.PageRow
	lastErr error
}

// Option configures a Service.
type Option func(*Service)

// WithIndex syncs the page index after every successful build.
func WithIndex(db index.PageIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithEvents publishes build events to p.
func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithRecorder records build metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger handed to every build.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a build service. factories lists the handler types
// available to the configuration.
func NewService(source ConfigSource, factories site.Factories, opts ...Option) *Service {
	s := &Service{
		source:    source,
		factories: factories,
		recorder:  metrics.NoopRecorder{},
		logger:    logging.Discard(),
		rows:      map[string]index.PageRow{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build reloads the configuration and runs a full build on a fresh site.
// Only one build runs at a time; a concurrent call fails with
// apperr.ErrConflict. The previous build stays current until this one
// succeeds.
func (s *Service) Build(ctx context.Context) (*site.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperr.New(apperr.KindConflict, "a build is already running")
	}
	defer s.running.Store(false)

	s.publish(sse.BuildStarted, map[string]any{"started_at": time.Now().UTC()})

	next, report, err := s.build(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error("build failed", logging.Err(err))
		s.publish(sse.BuildFailed, map[string]any{
			"error": err.Error(),
			"kind":  string(apperr.KindOf(err)),
		})
		return report, err
	}

	rows := index.Rows(next, report.BuildID)
	if s.db != nil {
		if err := s.db.Replace(report.BuildID, rows); err != nil {
			s.logger.Warn("index sync failed", logging.Err(err))
		}
	}
	byPath := make(map[string]index.PageRow, len(rows))
	for _, r := range rows {
		byPath[r.Path] = r
	}

	s.mu.Lock()
	s.current, s.report, s.rows, s.lastErr = next, report, byPath, nil
	s.mu.Unlock()

	s.publish(sse.BuildCompleted, map[string]any{
		"build_id":    report.BuildID,
		"pages":       report.Pages,
		"duration_ms": report.Duration.Milliseconds(),
	})
	return report, nil
}

func (s *Service) build(ctx context.Context) (*site.Site, *site.Report, error) {
	cfg, dir, err := s.source()
	if err != nil {
		return nil, nil, err
	}
	next := site.New(
		site.WithLogger(s.logger),
		site.WithFactories(s.factories),
		site.WithRecorder(s.recorder),
	)
	if err := next.Configure(ctx, cfg, dir); err != nil {
		return nil, nil, err
	}
	report, err := next.Build(ctx)
	if err != nil {
		return nil, report, err
	}
	return next, report, nil
}

func (s *Service) publish(kind string, data any) {
	if s.events != nil {
		s.events.PublishBuildEvent(kind, data)
	}
}

// Running reports whether a build is in progress.
func (s *Service) Running() bool { return s.running.Load() }

// Site returns the site of the last successful build, or nil.
func (s *Service) Site() *site.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Status describes the last build and whether one is running.
func (s *Service) Status() models.BuildStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.BuildStatus{Running: s.running.Load()}
	if s.report != nil {
		started := s.report.StartedAt
		st.BuildID = s.report.BuildID
		st.StartedAt = &started
		st.Duration = s.report.Duration.String()
		st.Pages = s.report.Pages
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
		st.ErrorKind = string(apperr.KindOf(s.lastErr))
	}
	return st
}

// ListPages returns the listable pages of the last build that match c.
func (s *Service) ListPages(_ context.Context, c site.Criteria) ([]models.PageSummary, error) {
	cur, rows := s.snapshot()
	if cur == nil {
		return nil, errNoBuild()
	}
	pages := cur.FindPages(c)
	out := make([]models.PageSummary, len(pages))
	for i, p := range pages {
		out[i] = summary(p, rows[p.Path()])
	}
	return out, nil
}

// GetPage returns one page of the last build by output path.
func (s *Service) GetPage(_ context.Context, path string) (*models.PageDetail, error) {
	cur, rows := s.snapshot()
	if cur == nil {
		return nil, errNoBuild()
	}
	p, err := cur.Page(path)
	if err != nil {
		return nil, err
	}
	row := rows[path]
	return &models.PageDetail{
		PageSummary: summary(p, row),
		State:       p.State().String(),
		Stage:       p.Stage(),
		OutputFile:  p.OutputFile(),
		Checksum:    row.Checksum,
		Text:        row.Body,
		Frontmatter: p.Frontmatter(),
		BuildID:     row.BuildID,
		OutputAt:    p.OutputTime(),
	}, nil
}

// Search runs a full-text query against the page index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]models.SearchHit, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindConfig, "search needs a page index; set index.path")
	}
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]models.SearchHit, len(results))
	for i, r := range results {
		hits[i] = models.SearchHit{Path: r.Path, Title: r.Title, Snippet: r.Snippet}
	}
	return hits, nil
}

func (s *Service) snapshot() (*site.Site, map[string]index.PageRow) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.rows
}

func errNoBuild() error {
	return apperr.New(apperr.KindNotFound, "no completed build yet")
}

func summary(p *site.Page, row index.PageRow) models.PageSummary {
	m := p.Meta()
	out := models.PageSummary{
		Path:       p.Path(),
		Title:      m.Title,
		Source:     p.SourcePath(),
		Handler:    p.Handler().Name(),
		Tags:       m.Tags,
		Categories: m.Categories,
		Draft:      m.Draft,
		Static:     m.Static,
	}
	if out.Title == "" {
		out.Title = row.Title
	}
	if m.PublishDate.Unix() != 0 {
		d := m.PublishDate
		out.PublishDate = &d
	}
	return out
}
