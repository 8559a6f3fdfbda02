package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ForestKatsch/apogee-ssg/internal/metrics"
)

// StageTiming is the wall time of one transform stage.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes a build.
type Report struct {
	BuildID     string        `json:"build_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Pages       int           `json:"pages"`
	StaticFiles int           `json:"static_files"`
	Stages      []StageTiming `json:"stages"`
}

// Build runs a full build of the configured site: collect content, create
// pages, ingest, classify, transform, output and copy static files. The
// returned report is non-nil even when the build fails. Pages persist
// until the next Configure, so a site builds once per configuration.
func (s *Site) Build(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	err := s.build(ctx, report)
	report.Duration = time.Since(report.StartedAt)
	report.Pages = s.PageCount()

	s.recorder.ObserveBuildDuration(report.Duration)
	switch {
	case err == nil:
		s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		s.recorder.SetPageCount(report.Pages)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
	default:
		s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
	if err != nil {
		return report, err
	}

	noun := "pages"
	if report.Pages == 1 {
		noun = "page"
	}
	s.logger.Info(fmt.Sprintf("build complete; generated %d %s in %.4fs", report.Pages, noun, report.Duration.Seconds()),
		slog.String("build_id", report.BuildID))
	return report, nil
}

func (s *Site) build(ctx context.Context, report *Report) error {
	s.logger.Debug(fmt.Sprintf("building from content root: '%s'", s.contentRoot))

	files, err := s.CollectContent()
	if err != nil {
		return err
	}
	s.logger.Debug("content files to ingest", slog.Any("files", files))

	if err := s.AddContent(files); err != nil {
		return err
	}
	if err := s.Ingest(ctx); err != nil {
		return err
	}
	stages, err := s.transform(ctx)
	report.Stages = stages
	if err != nil {
		return err
	}
	if err := s.Output(ctx); err != nil {
		return err
	}
	n, err := s.CopyStatic(ctx)
	report.StaticFiles = n
	return err
}
