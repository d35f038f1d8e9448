package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"catalogapi/internal/cache"
	"catalogapi/internal/models"

	"gorm.io/gorm"
)

// TermQuery filters a term listing.
type TermQuery struct {
	Taxonomy  string
	Page      int
	PerPage   int
	Order     string
	OrderBy   string
	HideEmpty bool
	Parent    *uint
	Search    string
	Include   []uint
	Exclude   []uint
	Slug      string
	ProductID uint
}

// TermPage is one page of terms.
type TermPage struct {
	Terms []models.Term
	Total int64
	Pages int
}

var termOrderColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"slug":        "slug",
	"count":       "count",
	"menu_order":  "menu_order",
	"term_group":  "menu_order",
	"description": "description",
}

type TermRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewTermRepository(db *gorm.DB, c *cache.Cache) *TermRepository {
	return &TermRepository{
		db:    db,
		cache: c,
	}
}

// TaxonomyExists reports whether taxonomy is a built-in product taxonomy or a registered attribute.
func (r *TermRepository) TaxonomyExists(ctx context.Context, taxonomy string) (bool, error) {
	switch taxonomy {
	case models.TaxonomyCategory, models.TaxonomyTag, models.TaxonomyType, models.TaxonomyVisibility:
		return true, nil
	}
	if !strings.HasPrefix(taxonomy, models.AttributeTaxonomyPrefix) {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttributeTaxonomy{}).
		Where("name = ?", strings.TrimPrefix(taxonomy, models.AttributeTaxonomyPrefix)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check taxonomy %s: %w", taxonomy, err)
	}
	return count > 0, nil
}

func (r *TermRepository) List(ctx context.Context, q TermQuery) (*TermPage, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("terms.taxonomy = ?", q.Taxonomy)
		if q.HideEmpty {
			db = db.Where("terms.count > 0")
		}
		if q.Parent != nil {
			db = db.Where("terms.parent_id = ?", *q.Parent)
		}
		if q.Search != "" {
			like := "%" + strings.ToLower(q.Search) + "%"
			db = db.Where("(LOWER(terms.name) LIKE ? OR LOWER(terms.slug) LIKE ?)", like, like)
		}
		if len(q.Include) > 0 {
			db = db.Where("terms.id IN ?", q.Include)
		}
		if len(q.Exclude) > 0 {
			db = db.Where("terms.id NOT IN ?", q.Exclude)
		}
		if q.Slug != "" {
			db = db.Where("terms.slug = ?", q.Slug)
		}
		if q.ProductID != 0 {
			db = db.Where("terms.id IN (?)", r.db.Model(&models.TermRelationship{}).
				Select("term_id").
				Where("product_id = ?", q.ProductID))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Term{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count %s terms: %w", q.Taxonomy, err)
	}

	column, ok := termOrderColumns[strings.ToLower(q.OrderBy)]
	if !ok {
		column = "name"
	}
	order := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		order = "DESC"
	}

	perPage := q.PerPage
	if perPage < 1 {
		perPage = 10
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	var terms []models.Term
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order(fmt.Sprintf("terms.%s %s, terms.id ASC", column, order)).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s terms: %w", q.Taxonomy, err)
	}

	return &TermPage{
		Terms: terms,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// Get returns a term of taxonomy by id.
func (r *TermRepository) Get(ctx context.Context, taxonomy string, id uint) (*models.Term, error) {
	var term models.Term
	err := r.db.WithContext(ctx).Where("taxonomy = ?", taxonomy).First(&term, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch term %d: %w", id, err)
	}
	return &term, nil
}

// All returns every term of taxonomy ordered by name.
func (r *TermRepository) All(ctx context.Context, taxonomy string) ([]models.Term, error) {
	return cache.Remember(ctx, r.cache, cache.KeyTerms(taxonomy), func() ([]models.Term, error) {
		var terms []models.Term
		err := r.db.WithContext(ctx).
			Where("taxonomy = ?", taxonomy).
			Order("name ASC, id ASC").
			Find(&terms).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list %s terms: %w", taxonomy, err)
		}
		return terms, nil
	})
}

func (r *TermRepository) Attributes(ctx context.Context) ([]models.AttributeTaxonomy, error) {
	var attrs []models.AttributeTaxonomy
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&attrs).Error; err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return attrs, nil
}

func (r *TermRepository) Attribute(ctx context.Context, id uint) (*models.AttributeTaxonomy, error) {
	var attr models.AttributeTaxonomy
	if err := r.db.WithContext(ctx).First(&attr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch attribute %d: %w", id, err)
	}
	return &attr, nil
}
