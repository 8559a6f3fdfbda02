package api

import (
	"context"

	"github.com/ForestKatsch/apogee-ssg/internal/buildservice"
	"github.com/ForestKatsch/apogee-ssg/internal/models"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// Service is the build service as seen by the API layer.
type Service interface {
	Build(ctx context.Context) (*site.Report, error)
	Status() models.BuildStatus
	ListPages(ctx context.Context, c site.Criteria) ([]models.PageSummary, error)
	GetPage(ctx context.Context, path string) (*models.PageDetail, error)
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
}

var _ Service = (*buildservice.Service)(nil)
