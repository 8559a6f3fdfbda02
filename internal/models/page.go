// Package models defines the transport types for built pages.
package models

import "time"

// PageSummary is a lightweight page representation returned by list operations.
type PageSummary struct {
	Path        string     `json:"path"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	Handler     string     `json:"handler"`
	Tags        []string   `json:"tags"`
	Categories  []string   `json:"categories"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Draft       bool       `json:"draft,omitempty"`
	Static      bool       `json:"static,omitempty"`
}

// PageDetail is the full representation of a built page.
type PageDetail struct {
	PageSummary
	State       string         `json:"state"`
	Stage       string         `json:"stage"`
	OutputFile  string         `json:"output_file"`
	Checksum    string         `json:"checksum,omitempty"`
	Text        string         `json:"text,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	BuildID     string         `json:"build_id"`
	OutputAt    time.Time      `json:"output_at"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// BuildStatus describes the build service state.
type BuildStatus struct {
	Running   bool       `json:"running"`
	BuildID   string     `json:"build_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Duration  string     `json:"duration,omitempty"`
	Pages     int        `json:"pages"`
	LastError string     `json:"last_error,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty"`
}
