package markdown

import (
	"context"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ForestKatsch/apogee-ssg/internal/frontmatter"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	"github.com/ForestKatsch/apogee-ssg/internal/tmpl"
)

func (h *Handler) renderPage(_ context.Context, p *site.Page, _ string) (tmpl.Result, error) {
	body, err := h.RenderBody(p)
	if err != nil {
		return tmpl.Empty, err
	}
	return htmlPage(p, Title(p), head(p), tmpl.Join(
		h.header(p),
		tmpl.Format(`
<main class="page-main">
  <section class="text">%s</section>
%s</main>
`, tmpl.Raw(body), h.listing(p)),
		footer(p),
	)), nil
}

// Title is the page title: the frontmatter title, else the first H1 of the
// source, else the file name title-cased. The root page falls back to the
// site title.
func Title(p *site.Page) string {
	if t := p.Meta().Title; t != "" {
		return t
	}
	if t := frontmatter.DeriveTitle(source(p)); t != "" {
		return t
	}
	return nameTitle(p)
}

// nameTitle derives a title from the output path alone.
func nameTitle(p *site.Page) string {
	if p.Path() == "/" {
		return p.Site().Title()
	}
	name := path.Base(p.Path())
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	// Casers are stateful and not shared between goroutines.
	return cases.Title(language.English).String(name)
}

// head renders the meta tags of a page from its metadata.
func head(p *site.Page) tmpl.Result {
	m := p.Meta()
	var b tmpl.Builder
	raw, _ := p.Param("description")
	if d, ok := raw.(string); ok && d != "" {
		b.Printf(`    <meta name="description" content="%s" />
`, d)
	}
	if m.Author != "" {
		b.Printf(`    <meta name="author" content="%s" />
`, m.Author)
	}
	if len(m.Tags) > 0 {
		b.Printf(`    <meta name="keywords" content="%s" />
`, strings.Join(m.Tags, ", "))
	}
	return b.Result()
}

// htmlPage wraps body in a document. head is placed inside <head> after
// the stylesheet link.
func htmlPage(p *site.Page, title string, head, body tmpl.Result) tmpl.Result {
	return tmpl.Format(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <link rel="stylesheet" href="%s" />
%s    <title>%s</title>
  </head>
  <body>
%s
  </body>
</html>
`, p.Static("style.css"), head, title, body)
}

func (h *Handler) header(p *site.Page) tmpl.Result {
	var nav tmpl.Builder
	for _, item := range h.nav {
		nav.Printf(`  <a class="page-header__nav" href="%s">%s</a>
`, p.Link(item.Path, false), item.Title)
	}
	return tmpl.Format(`
<header class="page-header">
  <h1 class="page-header__title"><a href="%s">%s</a></h1>
%s</header>
`, p.Link("/", false), p.Site().Title(), nav.Result())
}

func footer(p *site.Page) tmpl.Result {
	return tmpl.Format(`
<footer class="page-footer">
  <span class="page-footer__generation-date">This page was generated from <code>%s</code> by Apogee on <code>%s</code></span>
</footer>
`, p.SourcePath(), time.Now().UTC().Format(time.RFC3339))
}

// listing renders the pages selected by the frontmatter "list" table:
//
//	[list]
//	tags = ["news"]
//	all_tags = false
//	categories = []
//	exclude_tags = ["hidden"]
//	limit = 10
func (h *Handler) listing(p *site.Page) tmpl.Result {
	raw, ok := p.Param("list")
	if !ok {
		return tmpl.Empty
	}
	list, ok := raw.(map[string]any)
	if !ok {
		h.Logger().Warn("frontmatter 'list' must be a table", logging.Page(p.SourcePath()))
		return tmpl.Empty
	}
	criteria := Criteria(list)

	var b tmpl.Builder
	b.Raw("  <section class=\"page-list\">\n    <ul>\n")
	for _, other := range p.Site().FindPages(criteria) {
		if other == p {
			continue
		}
		// Other pages may be mid-transform; read only their metadata.
		m := other.Meta()
		title := m.Title
		if title == "" {
			title = nameTitle(other)
		}
		b.Printf(`      <li><a href="%s">%s</a>`, p.LinkTo(other, false), title)
		if !m.PublishDate.IsZero() && m.PublishDate.Unix() != 0 {
			b.Printf(` <time datetime="%s">%s</time>`, m.PublishDate.Format(time.RFC3339), m.PublishDate.Format("2006-01-02"))
		}
		b.Raw("</li>\n")
	}
	b.Raw("    </ul>\n  </section>\n")
	return b.Result()
}

// Criteria converts a "list" table to page criteria.
func Criteria(list map[string]any) site.Criteria {
	c := site.Criteria{
		Include: &site.Filter{
			Tags:       frontmatter.Strings(list["tags"]),
			Categories: frontmatter.Strings(list["categories"]),
		},
		Exclude: &site.Filter{
			Tags:       frontmatter.Strings(list["exclude_tags"]),
			Categories: frontmatter.Strings(list["exclude_categories"]),
		},
	}
	c.Include.AllTags, _ = list["all_tags"].(bool)
	c.Include.AllCategories, _ = list["all_categories"].(bool)
	switch n := list["limit"].(type) {
	case int64:
		c.Limit = int(n)
	case int:
		c.Limit = n
	case float64:
		c.Limit = int(n)
	}
	return c
}
