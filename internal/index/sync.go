package index

import (
	"log/slog"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/checksum"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// Rows converts the pages of a finished build to index rows.
func Rows(s *site.Site, buildID string) []PageRow {
	pages := s.Pages()
	rows := make([]PageRow, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, row(p, buildID))
	}
	return rows
}

func row(p *site.Page, buildID string) PageRow {
	m := p.Meta()
	r := PageRow{
		Path:        p.Path(),
		Title:       m.Title,
		Source:      p.SourcePath(),
		Handler:     p.Handler().Name(),
		Tags:        m.Tags,
		Categories:  m.Categories,
		PublishDate: m.PublishDate,
		BuildID:     buildID,
	}
	if m.PublishDate.Unix() == 0 {
		r.PublishDate = time.Time{}
	}

	w, ok := p.Contents().(site.Writable)
	if !ok {
		return r
	}
	r.Checksum = checksum.Of(w.Kind(), w.Bytes())
	// Static pages may be binary.
	if m.Static {
		return r
	}

	switch c := p.Contents().(type) {
	case site.Markup:
		title, text := Extract(string(c))
		r.Body = text
		if r.Title == "" {
			r.Title = title
		}
	case site.Text:
		r.Body = string(c)
	}
	return r
}

// Sync replaces the index with the pages of a finished build.
func Sync(db PageIndex, s *site.Site, buildID string, logger *slog.Logger) error {
	rows := Rows(s, buildID)
	if err := db.Replace(buildID, rows); err != nil {
		return err
	}
	logger.Debug("index: synced", slog.Int("pages", len(rows)), slog.String("build_id", buildID))
	return nil
}
