package site

import (
	"maps"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ForestKatsch/apogee-ssg/internal/frontmatter"
)

// Recognized metadata keys.
const (
	MetaTitle       = "title"
	MetaAuthor      = "author"
	MetaPublishDate = "publishDate"
	MetaUpdateDate  = "updateDate"
	MetaDraft       = "draft"
	MetaStatic      = "static"
	MetaTags        = "tags"
	MetaCategories  = "categories"
	MetaHandler     = "handler"
)

var epoch = time.Unix(0, 0).UTC()

// Meta is the merged metadata of a page.
type Meta struct {
	Title       string
	Author      string
	PublishDate time.Time
	UpdateDate  time.Time
	Draft       bool
	Static      bool
	Tags        []string
	Categories  []string
	Handler     string
	// Extra holds every key not listed above.
	Extra map[string]any
}

// Params returns the merged metadata map: the handler defaults overlaid
// with the page's frontmatter, key by key.
func (p *Page) Params() map[string]any {
	out := map[string]any{}
	if p.handler != nil {
		maps.Copy(out, p.handler.base().defaults)
	}
	maps.Copy(out, p.frontmatter)
	return out
}

// Param returns one merged metadata value.
func (p *Page) Param(key string) (any, bool) {
	if v, ok := p.frontmatter[key]; ok {
		return v, true
	}
	if p.handler != nil {
		v, ok := p.handler.base().defaults[key]
		return v, ok
	}
	return nil, false
}

// Meta returns the page metadata, lowest to highest precedence: built-in
// defaults, handler defaults, frontmatter.
func (p *Page) Meta() Meta {
	m := Meta{
		PublishDate: epoch,
		UpdateDate:  epoch,
		Tags:        []string{},
		Categories:  []string{},
		Extra:       map[string]any{},
	}
	for key, v := range p.Params() {
		switch key {
		case MetaTitle:
			m.Title, _ = v.(string)
		case MetaAuthor:
			m.Author, _ = v.(string)
		case MetaPublishDate:
			m.PublishDate = toTime(v, m.PublishDate)
		case MetaUpdateDate:
			m.UpdateDate = toTime(v, m.UpdateDate)
		case MetaDraft:
			m.Draft, _ = v.(bool)
		case MetaStatic:
			m.Static, _ = v.(bool)
		case MetaTags:
			m.Tags = frontmatter.Strings(v)
		case MetaCategories:
			m.Categories = frontmatter.Strings(v)
		case MetaHandler:
			m.Handler, _ = v.(string)
		default:
			m.Extra[key] = v
		}
	}
	return m
}

func toTime(v any, def time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case toml.LocalDateTime:
		return t.AsTime(time.UTC)
	case toml.LocalDate:
		return t.AsTime(time.UTC)
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return def
}
