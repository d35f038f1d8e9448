package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"catalogapi/internal/cache"
	"catalogapi/internal/models"
	"catalogapi/internal/query"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked up record does not exist.
var ErrNotFound = errors.New("record not found")

// Result is one page of a product query.
type Result struct {
	Products []*models.Product
	Total    int64
	Pages    int
}

type ProductRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	now   func() time.Time
}

func NewProductRepository(db *gorm.DB, c *cache.Cache) *ProductRepository {
	return &ProductRepository{
		db:    db,
		cache: c,
		now:   time.Now,
	}
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("VariationAttributes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Gallery").
		Preload("Links").
		Preload("Meta", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// Query runs translated args and returns the requested page.
func (r *ProductRepository) Query(ctx context.Context, args query.Args) (*Result, error) {
	filter, err := buildFilter(args)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	perPage := args.PerPage
	if perPage < 1 {
		perPage = 10
	}
	offset := args.Offset
	if offset == 0 && args.Page > 1 {
		offset = (args.Page - 1) * perPage
	}

	var products []*models.Product
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(filter, withAssociations).
		Order(buildOrder(args, r.db.Dialector.Name())).
		Limit(perPage).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return &Result{
		Products: products,
		Total:    total,
		Pages:    int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Scopes(withAssociations).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}

// Products loads the given ids in the order given, skipping ids that do not exist.
func (r *ProductRepository) Products(ctx context.Context, ids []uint) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []*models.Product
	if err := r.db.WithContext(ctx).Scopes(withAssociations).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	byID := make(map[uint]*models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) IDBySKU(ctx context.Context, sku string) (uint, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("id").
		Where("sku = ? AND status <> ?", sku, "trash").
		Order("id ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to look up sku %q: %w", sku, err)
	}
	return product.ID, nil
}

func (r *ProductRepository) IDBySlug(ctx context.Context, slug string) (uint, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("id").
		Where("slug = ? AND type NOT IN ? AND status = ?", slug, models.VariationTypes, models.StatusPublish).
		Order("id ASC").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to look up slug %q: %w", slug, err)
	}
	return product.ID, nil
}

// Children returns every variation of a variable product ordered by menu order.
func (r *ProductRepository) Children(ctx context.Context, parentID uint) ([]*models.Product, error) {
	var children []*models.Product
	err := r.db.WithContext(ctx).
		Scopes(withAssociations).
		Where("parent_id = ? AND type IN ? AND status <> ?", parentID, models.VariationTypes, "trash").
		Order("menu_order ASC, id ASC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of %d: %w", parentID, err)
	}
	return children, nil
}

// ChildIDs returns the ids of every variation of a variable product.
func (r *ProductRepository) ChildIDs(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("parent_id = ? AND type IN ? AND status <> ?", parentID, models.VariationTypes, "trash").
		Order("menu_order ASC, id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch child ids of %d: %w", parentID, err)
	}
	return ids, nil
}

// GroupedChildren returns the existing children of a grouped product in link order.
func (r *ProductRepository) GroupedChildren(ctx context.Context, p *models.Product) ([]*models.Product, error) {
	return r.Products(ctx, p.LinkedIDs(models.LinkGrouped))
}

// ProductTerms returns the terms of taxonomy assigned to a product, by name.
func (r *ProductRepository) ProductTerms(ctx context.Context, productID uint, taxonomy string) ([]models.Term, error) {
	var terms []models.Term
	err := r.db.WithContext(ctx).
		Joins("JOIN term_relationships tr ON tr.term_id = terms.id").
		Where("tr.product_id = ? AND terms.taxonomy = ?", productID, taxonomy).
		Order("terms.name ASC").
		Find(&terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s terms of %d: %w", taxonomy, productID, err)
	}
	return terms, nil
}

func (r *ProductRepository) TermBySlug(ctx context.Context, taxonomy, slug string) (*models.Term, error) {
	var term models.Term
	err := r.db.WithContext(ctx).Where("taxonomy = ? AND slug = ?", taxonomy, slug).First(&term).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch term %s/%s: %w", taxonomy, slug, err)
	}
	return &term, nil
}

// AttributeTaxonomyByName looks up a global attribute by taxonomy name ("pa_color").
func (r *ProductRepository) AttributeTaxonomyByName(ctx context.Context, taxonomy string) (*models.AttributeTaxonomy, error) {
	if len(taxonomy) <= len(models.AttributeTaxonomyPrefix) || taxonomy[:len(models.AttributeTaxonomyPrefix)] != models.AttributeTaxonomyPrefix {
		return nil, ErrNotFound
	}
	var attr models.AttributeTaxonomy
	err := r.db.WithContext(ctx).Where("name = ?", taxonomy[len(models.AttributeTaxonomyPrefix):]).First(&attr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch attribute %s: %w", taxonomy, err)
	}
	return &attr, nil
}

// AttributeTaxonomyNames returns the taxonomy names of every registered attribute.
func (r *ProductRepository) AttributeTaxonomyNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&models.AttributeTaxonomy{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list attribute taxonomies: %w", err)
	}
	for i, name := range names {
		names[i] = models.AttributeTaxonomyPrefix + name
	}
	return names, nil
}

// Images returns the attachments with the given ids keyed by id.
func (r *ProductRepository) Images(ctx context.Context, ids []uint) (map[uint]models.Image, error) {
	out := make(map[uint]models.Image, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var images []models.Image
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}
	for _, img := range images {
		out[img.ID] = img
	}
	return out, nil
}

// RelatedIDs picks up to limit published products sharing a category or tag with p.
func (r *ProductRepository) RelatedIDs(ctx context.Context, p *models.Product, limit int) ([]uint, error) {
	if limit <= 0 {
		return nil, nil
	}
	source := p.ID
	if p.IsVariation() && p.ParentID != 0 {
		source = p.ParentID
	}

	shared := r.db.
		Table("term_relationships AS own").
		Select("other.product_id").
		Joins("JOIN terms t ON t.id = own.term_id").
		Joins("JOIN term_relationships other ON other.term_id = own.term_id").
		Where("own.product_id = ? AND t.taxonomy IN ?", source, []string{models.TaxonomyCategory, models.TaxonomyTag})

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id IN (?)", shared).
		Where("id NOT IN ? AND status = ? AND type NOT IN ?", []uint{source, p.ID}, models.StatusPublish, models.VariationTypes).
		Order(randomOrder(r.db.Dialector.Name())).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch related products of %d: %w", p.ID, err)
	}
	return ids, nil
}

// Reviews returns the approved reviews of a product, newest first.
func (r *ProductRepository) Reviews(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, "approved").
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews of %d: %w", productID, err)
	}
	return reviews, nil
}

// OnSaleIDs returns products with an active sale plus the parents of variations on sale.
func (r *ProductRepository) OnSaleIDs(ctx context.Context) ([]uint, error) {
	return cache.Remember(ctx, r.cache, cache.KeyOnSaleIDs, func() ([]uint, error) {
		return r.loadOnSaleIDs(ctx)
	})
}

func (r *ProductRepository) loadOnSaleIDs(ctx context.Context) ([]uint, error) {
	now := r.now()
	var rows []struct {
		ID       uint
		ParentID uint
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id, parent_id").
		Where("status = ?", models.StatusPublish).
		Where("sale_price IS NOT NULL AND regular_price IS NOT NULL AND sale_price < regular_price").
		Where("date_on_sale_from IS NULL OR date_on_sale_from <= ?", now).
		Where("date_on_sale_to IS NULL OR date_on_sale_to >= ?", now).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch on-sale products: %w", err)
	}

	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		for _, id := range []uint{row.ID, row.ParentID} {
			if id != 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// RefreshOnSaleIDs recomputes the on-sale set and replaces the cached copy.
func (r *ProductRepository) RefreshOnSaleIDs(ctx context.Context) ([]uint, error) {
	ids, err := r.loadOnSaleIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cache.KeyOnSaleIDs, ids); err != nil {
		return ids, err
	}
	return ids, nil
}
