package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

const defaultSearchLimit = 20

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the page output path from the URL (everything after /api/pages).
// Supports encoded slashes from OpenAPI clients (e.g. posts%2Fhello).
func pagePath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return "/" + decoded
}

// splitList accepts repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func criteriaFromQuery(q url.Values) site.Criteria {
	c := site.Criteria{}
	include := &site.Filter{
		Tags:          splitList(q["tag"]),
		Categories:    splitList(q["category"]),
		AllTags:       q.Get("all_tags") == "true",
		AllCategories: q.Get("all_categories") == "true",
	}
	if len(include.Tags) > 0 || len(include.Categories) > 0 {
		c.Include = include
	}
	exclude := &site.Filter{
		Tags:       splitList(q["exclude_tag"]),
		Categories: splitList(q["exclude_category"]),
	}
	if len(exclude.Tags) > 0 || len(exclude.Categories) > 0 {
		c.Exclude = exclude
	}
	c.Limit, _ = strconv.Atoi(q.Get("limit"))
	return c
}

// ListPages handles GET /api/pages.
//
//	@Summary		List listable pages of the last build
//	@Tags			pages
//	@Produce		json
//	@Param			tag					query		string	false	"Include tag (repeatable, comma separated)"
//	@Param			category			query		string	false	"Include category"
//	@Param			all_tags			query		bool	false	"Require every tag"
//	@Param			all_categories		query		bool	false	"Require every category"
//	@Param			exclude_tag			query		string	false	"Exclude tag"
//	@Param			exclude_category	query		string	false	"Exclude category"
//	@Param			limit				query		int		false	"Maximum pages"
//	@Success		200					{object}	PageListResponse
//	@Failure		404					{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.ListPages(r.Context(), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	if pages == nil {
		pages = []PageSummary{}
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: pages, Total: len(pages)})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary		Get a single page by output path
//	@Tags			pages
//	@Produce		json
//	@Param			path	path		string	true	"Page path"
//	@Success		200		{object}	PageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetPage(r.Context(), pagePath(r))
	if err != nil {
		writeError(w, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over indexed pages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if hits == nil {
		hits = []PageHit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// BuildStatus handles GET /api/build.
//
//	@Summary		Describe the last build
//	@Tags			build
//	@Produce		json
//	@Success		200	{object}	models.BuildStatus
//	@Security		BearerAuth
//	@Router			/build [get]
func (h *Handler) BuildStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// Build handles POST /api/build.
//
//	@Summary		Run a full site build
//	@Tags			build
//	@Produce		json
//	@Success		200	{object}	BuildResponse
//	@Failure		409	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/build [post]
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	// The build outlives a disconnecting client.
	report, err := h.svc.Build(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, "build", err)
		return
	}
	writeJSON(w, http.StatusOK, BuildResponse{Report: report})
}
