package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/limiter"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/storage"
)

// CollectContent returns the content files claimed by a handler, as
// slash-rooted paths relative to the content root.
func (s *Site) CollectContent() ([]string, error) {
	if !s.configured {
		return nil, apperr.New(apperr.KindConfig, "site is not configured")
	}
	files, err := s.content.Walk("", true)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindPermission, "could not read content directory '%s'", s.contentRoot)
	}
	out := files[:0]
	for _, f := range files {
		if s.handlers.HasExtension(path.Ext(f)) {
			out = append(out, f)
		}
	}
	return out, nil
}

// AddContent hands every content file to the handler claiming its
// extension.
func (s *Site) AddContent(files []string) error {
	for _, f := range files {
		h, err := s.handlers.ForExtension(path.Ext(f))
		if err != nil {
			return err
		}
		if err := h.AddContent(f); err != nil {
			return err
		}
	}
	return nil
}

// Ingest ingests every page, bounded by the limiter, then classifies them.
func (s *Site) Ingest(ctx context.Context) error {
	err := limiter.Each(ctx, s.limiter, s.Pages(), func(ctx context.Context, p *Page) error {
		return s.IngestPage(ctx, p)
	})
	if err != nil {
		return err
	}
	return s.classify(ctx)
}

// IngestPage ingests one page through its handler.
func (s *Site) IngestPage(ctx context.Context, p *Page) error {
	s.logger.Debug("ingesting page", logging.Page(p.SourcePath()), logging.Handler(p.handler.Name()))
	if err := p.handler.Ingest(ctx, p); err != nil {
		return err
	}
	p.state = StateIngested
	return nil
}

// classify moves pages whose frontmatter names another handler to that
// handler. It runs sequentially, after every ingest task has finished.
func (s *Site) classify(ctx context.Context) error {
	for _, p := range s.Pages() {
		name, _ := p.frontmatter[MetaHandler].(string)
		if name != "" && name != p.handler.Name() {
			h, err := s.handlers.Get(name)
			if err != nil {
				return apperr.Wrap(err, apperr.KindUnknownHandler,
					"page '%s' requests unknown handler '%s'", p.SourcePath(), name).With("page", p.SourcePath())
			}
			s.logger.Debug("reassigning page", logging.Page(p.SourcePath()),
				slog.String("from", p.handler.Name()), slog.String("to", name))
			p.handler = h
			if err := h.InheritPage(ctx, p); err != nil {
				return err
			}
		}

		m := p.Meta()
		if m.Title == "" && !m.Static {
			s.logger.Warn(fmt.Sprintf("page '%s' has no title", p.SourcePath()), logging.Page(p.SourcePath()))
		}
	}
	return nil
}

// Transform runs every stage in order: @start, the operations, @end.
func (s *Site) Transform(ctx context.Context) error {
	_, err := s.transform(ctx)
	return err
}

func (s *Site) transform(ctx context.Context) ([]StageTiming, error) {
	var timings []StageTiming
	for _, stage := range s.Stages() {
		start := time.Now()
		err := s.TransformStage(ctx, stage)
		d := time.Since(start)
		timings = append(timings, StageTiming{Name: stage, Duration: d})
		s.recorder.ObserveStageDuration(stage, d)
		if err != nil {
			return timings, err
		}
	}
	return timings, nil
}

// TransformStage runs one stage:
//  1. every handler's "<op>-pre" hook, concurrently, all awaited;
//  2. every page's transform for op, bounded by the limiter;
//  3. every handler's "<op>" hook;
//  4. every handler's "<op>-post" hook.
//
// A failing page does not stop its siblings, but the stage stops after
// step 2 with the joined errors.
func (s *Site) TransformStage(ctx context.Context, op string) error {
	s.logger.Debug("running stage", logging.Stage(op))

	if err := s.runGlobal(ctx, op+"-pre"); err != nil {
		return err
	}
	err := limiter.Each(ctx, s.limiter, s.Pages(), func(ctx context.Context, p *Page) error {
		return s.TransformPage(ctx, p, op)
	})
	if err != nil {
		return err
	}
	if err := s.runGlobal(ctx, op); err != nil {
		return err
	}
	return s.runGlobal(ctx, op+"-post")
}

// TransformPage runs transform op on p. An empty op runs every stage in
// order on p alone.
func (s *Site) TransformPage(ctx context.Context, p *Page, op string) error {
	if op == "" {
		for _, stage := range s.Stages() {
			if err := s.TransformPage(ctx, p, stage); err != nil {
				return err
			}
		}
		return nil
	}
	if err := p.handler.base().transform(ctx, p, op); err != nil {
		return err
	}
	p.stage = op
	if op == StageRender {
		p.state = StateRendered
	} else if p.state < StateTransformed {
		p.state = StateTransformed
	}
	return nil
}

func (s *Site) runGlobal(ctx context.Context, op string) error {
	hs := s.handlers.Handlers()
	if len(hs) == 0 {
		return nil
	}
	return limiter.Each(ctx, limiter.New(len(hs)), hs, func(ctx context.Context, h Handler) error {
		return h.base().runGlobal(ctx, op)
	})
}

// RenderPage renders variant of p through its handler. A handler without
// the variant logs a warning and yields "".
func (s *Site) RenderPage(ctx context.Context, p *Page, variant string) (string, error) {
	return p.handler.base().render(ctx, p, variant)
}

// Output writes every page, bounded by the limiter.
func (s *Site) Output(ctx context.Context) error {
	return limiter.Each(ctx, s.limiter, s.Pages(), func(ctx context.Context, p *Page) error {
		return s.OutputPage(ctx, p)
	})
}

// OutputPage writes one page through its handler and stamps its output time.
func (s *Site) OutputPage(ctx context.Context, p *Page) error {
	if err := p.handler.Output(ctx, p); err != nil {
		return fmt.Errorf("output '%s': %w", p.SourcePath(), err)
	}
	p.outputTime = time.Now()
	p.state = StateOutput
	return nil
}

// CopyStatic copies the static root into the static output directory and
// returns the number of files copied. A disabled copy or a missing static
// root is not an error.
func (s *Site) CopyStatic(context.Context) (int, error) {
	if !s.config.Static.Copy {
		return 0, nil
	}
	src, err := storage.NewFS(s.staticRoot)
	if err != nil {
		s.logger.Info(fmt.Sprintf("static file directory '%s' is not a directory or does not exist; skipping copy", s.staticRoot))
		return 0, nil
	}
	n, err := storage.Copy(s.output, s.config.Static.Output, src)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return n, apperr.Wrap(err, apperr.KindPermission, "could not copy static files")
		}
		return n, err
	}
	return n, nil
}
