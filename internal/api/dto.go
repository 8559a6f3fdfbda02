package api

import (
	"github.com/ForestKatsch/apogee-ssg/internal/models"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// PageSummary is a lightweight page in a list response (aliased from the domain layer).
type PageSummary = models.PageSummary

// PageHit is one search result (aliased from the domain layer).
type PageHit = models.SearchHit

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = models.PageDetail

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []PageSummary `json:"pages" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []PageHit `json:"results" validate:"required"`
}

// BuildResponse is returned after a successful build.
type BuildResponse struct {
	Report *site.Report `json:"report" validate:"required"`
}
