package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path        string
	Title       string
	Source      string
	Handler     string
	Tags        []string
	Categories  []string
	PublishDate time.Time
	Checksum    string
	Body        string
	BuildID     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// Replace swaps the whole index for rows within a transaction.
func (db *DB) Replace(buildID string, rows []PageRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM pages`); err != nil {
		return fmt.Errorf("index: clear pages: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pages (path, title, source, handler, tags, categories, publish_date, checksum, body, build_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		tagsJSON, _ := json.Marshal(nonNil(r.Tags))
		catsJSON, _ := json.Marshal(nonNil(r.Categories))
		published := ""
		if !r.PublishDate.IsZero() {
			published = r.PublishDate.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.Exec(r.Path, r.Title, r.Source, r.Handler, string(tagsJSON), string(catsJSON),
			published, r.Checksum, r.Body, buildID); err != nil {
			return fmt.Errorf("index: insert page %s: %w", r.Path, err)
		}
		if err := ftsInsert(tx, r.Path, r.Title, r.Body, r.Tags); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPage returns one indexed page.
func (db *DB) GetPage(path string) (*PageRow, error) {
	var (
		r                  PageRow
		tagsJSON, catsJSON string
		published          string
	)
	err := db.conn.QueryRow(`
		SELECT path, title, source, handler, tags, categories, publish_date, checksum, body, build_id
		FROM pages WHERE path = ?
	`, path).Scan(&r.Path, &r.Title, &r.Source, &r.Handler, &tagsJSON, &catsJSON, &published, &r.Checksum, &r.Body, &r.BuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "page '%s' is not indexed", path).With("path", path)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	_ = json.Unmarshal([]byte(catsJSON), &r.Categories)
	if published != "" {
		r.PublishDate, _ = time.Parse(time.RFC3339, published)
	}
	return &r, nil
}

// Count returns the number of indexed pages.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// BuildID returns the build that produced the index, or "" when empty.
func (db *DB) BuildID() (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT build_id FROM pages LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: build id: %w", err)
	}
	return id, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
