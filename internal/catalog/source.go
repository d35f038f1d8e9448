package catalog

import (
	"context"

	"catalogapi/internal/models"
)

// Source is the catalog data the projector reads. The repository package
// provides the production implementation.
type Source interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
	Products(ctx context.Context, ids []uint) ([]*models.Product, error)
	Children(ctx context.Context, parentID uint) ([]*models.Product, error)
	GroupedChildren(ctx context.Context, p *models.Product) ([]*models.Product, error)
	ProductTerms(ctx context.Context, productID uint, taxonomy string) ([]models.Term, error)
	TermBySlug(ctx context.Context, taxonomy, slug string) (*models.Term, error)
	AttributeTaxonomyByName(ctx context.Context, taxonomy string) (*models.AttributeTaxonomy, error)
	Images(ctx context.Context, ids []uint) (map[uint]models.Image, error)
	RelatedIDs(ctx context.Context, p *models.Product, limit int) ([]uint, error)
	Reviews(ctx context.Context, productID uint) ([]models.Review, error)
}
