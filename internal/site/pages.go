package site

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

// PathFromFilename derives the output path of a content file: the
// extension is dropped and a basename of "index" maps to its directory.
//
//	/index.md     -> /
//	/a/index.md   -> /a
//	/a/b/c.gif    -> /a/b/c
func PathFromFilename(contentPath string) string {
	dir, file := path.Split(path.Join("/", contentPath))
	name := strings.TrimSuffix(file, path.Ext(file))
	if name == "index" {
		return path.Join("/", dir)
	}
	return path.Join("/", dir, name)
}

// PathFromFilename is the package function of the same name.
func (s *Site) PathFromFilename(contentPath string) string {
	return PathFromFilename(contentPath)
}

// CreatePageFromFilename creates the page for a content file.
func (s *Site) CreatePageFromFilename(contentPath string, h Handler) (*Page, error) {
	return s.CreatePage(PathFromFilename(contentPath), h, contentPath)
}

// CreatePage registers a page at outputPath. The path must be absolute and
// unused.
func (s *Site) CreatePage(outputPath string, h Handler, contentPath string) (*Page, error) {
	if !path.IsAbs(outputPath) {
		return nil, apperr.New(apperr.KindInternal, "page path '%s' must be absolute", outputPath)
	}
	outputPath = path.Clean(outputPath)
	if contentPath != "" {
		contentPath = path.Join("/", contentPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pages[outputPath]; ok {
		return nil, apperr.New(apperr.KindDuplicatePage, "cannot add duplicate page '%s'", outputPath).
			With("path", outputPath).With("content", contentPath).With("existing", existing.contentPath)
	}
	p := &Page{
		site:        s,
		path:        outputPath,
		contentPath: contentPath,
		handler:     h,
		frontmatter: map[string]any{},
	}
	s.pages[outputPath] = p
	s.order = append(s.order, p)
	return p, nil
}

func (s *Site) removeAllPages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = map[string]*Page{}
	s.order = nil
}

// Page returns the page at an output path.
func (s *Site) Page(p string) (*Page, error) {
	s.mu.RLock()
	page, ok := s.pages[p]
	s.mu.RUnlock()
	if ok {
		return page, nil
	}
	err := apperr.New(apperr.KindNotFound, "no page with path '%s'", p).With("path", p)
	if ext := path.Ext(p); ext != "" {
		err = apperr.New(apperr.KindNotFound,
			"no page with path '%s' (page paths have no extension; did you mean '%s'?)", p, PathFromFilename(p)).
			With("path", p)
	}
	return nil, err
}

// PageFrom resolves rel against the content directory of from. A resolved
// path carrying an extension names a content file and is mapped to its
// output path.
func (s *Site) PageFrom(from *Page, rel string) (*Page, error) {
	if !from.HasContent() {
		return nil, apperr.New(apperr.KindNoContentPath,
			"cannot resolve '%s' from page '%s' without a content path", rel, from.path)
	}
	target := rel
	if !path.IsAbs(rel) {
		target = path.Join(path.Dir(from.contentPath), rel)
	}
	target = path.Clean(target)
	if path.Ext(target) != "" {
		if p, err := s.Page(target); err == nil {
			return p, nil
		}
		target = PathFromFilename(target)
	}
	return s.Page(target)
}

// Pages returns every page in creation order.
func (s *Site) Pages() []*Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Page(nil), s.order...)
}

// PageCount returns the number of pages.
func (s *Site) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FindPages returns the non-static, non-draft pages matching c, newest
// publish date first. Pages with equal dates keep creation order.
func (s *Site) FindPages(c Criteria) []*Page {
	type entry struct {
		page *Page
		meta Meta
	}
	var list []entry
	for _, p := range s.Pages() {
		m := p.Meta()
		if m.Static || m.Draft {
			continue
		}
		if !c.Include.empty() && !c.Include.Matches(m) {
			continue
		}
		if !c.Exclude.empty() && c.Exclude.Matches(m) {
			continue
		}
		list = append(list, entry{page: p, meta: m})
	}
	slices.SortStableFunc(list, func(a, b entry) int {
		return b.meta.PublishDate.Compare(a.meta.PublishDate)
	})

	out := make([]*Page, 0, len(list))
	for _, e := range list {
		out = append(out, e.page)
	}
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out
}

// String describes the page for logs.
func (p *Page) String() string {
	return fmt.Sprintf("%s (%s)", p.path, p.SourcePath())
}
