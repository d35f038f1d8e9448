package repository

import (
	"context"
	"errors"
	"fmt"

	"catalogapi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Writer persists catalog data imported by connectors.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

// SaveProduct upserts a product with its child rows and replaces its term
// assignments. terms are matched on taxonomy and slug and created when missing.
func (w *Writer) SaveProduct(ctx context.Context, p *models.Product, terms []models.Term) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("failed to save product %q: %w", p.Name, err)
		}
		if err := replaceChildren(tx, p); err != nil {
			return err
		}

		ids := make([]uint, 0, len(terms))
		for i := range terms {
			term, err := ensureTerm(tx, terms[i])
			if err != nil {
				return err
			}
			ids = append(ids, term.ID)
		}
		if err := replaceRelationships(tx, p.ID, ids, false); err != nil {
			return err
		}
		return syncVisibility(tx, p)
	})
}

func replaceChildren(tx *gorm.DB, p *models.Product) error {
	steps := []struct {
		model interface{}
		key   string
		rows  func() (interface{}, int)
	}{
		{&models.ProductAttribute{}, "product_id", func() (interface{}, int) {
			for i := range p.Attributes {
				p.Attributes[i].ID = 0
				p.Attributes[i].ProductID = p.ID
			}
			return &p.Attributes, len(p.Attributes)
		}},
		{&models.VariationAttribute{}, "variation_id", func() (interface{}, int) {
			for i := range p.VariationAttributes {
				p.VariationAttributes[i].ID = 0
				p.VariationAttributes[i].VariationID = p.ID
			}
			return &p.VariationAttributes, len(p.VariationAttributes)
		}},
		{&models.GalleryImage{}, "product_id", func() (interface{}, int) {
			for i := range p.Gallery {
				p.Gallery[i].ProductID = p.ID
			}
			return &p.Gallery, len(p.Gallery)
		}},
		{&models.ProductLink{}, "product_id", func() (interface{}, int) {
			for i := range p.Links {
				p.Links[i].ProductID = p.ID
			}
			return &p.Links, len(p.Links)
		}},
		{&models.ProductMeta{}, "product_id", func() (interface{}, int) {
			for i := range p.Meta {
				p.Meta[i].ID = 0
				p.Meta[i].ProductID = p.ID
			}
			return &p.Meta, len(p.Meta)
		}},
	}

	for _, step := range steps {
		if err := tx.Where(step.key+" = ?", p.ID).Delete(step.model).Error; err != nil {
			return fmt.Errorf("failed to clear %T of product %d: %w", step.model, p.ID, err)
		}
		rows, n := step.rows()
		if n == 0 {
			continue
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
			return fmt.Errorf("failed to save %T of product %d: %w", step.model, p.ID, err)
		}
	}
	return nil
}

func ensureTerm(tx *gorm.DB, term models.Term) (*models.Term, error) {
	if term.Slug == "" {
		term.Slug = models.Slugify(term.Name)
	}
	var existing models.Term
	err := tx.Where("taxonomy = ? AND slug = ?", term.Taxonomy, term.Slug).First(&existing).Error
	switch {
	case err == nil:
		if term.Name != "" && term.Name != existing.Name {
			if err := tx.Model(&existing).Update("name", term.Name).Error; err != nil {
				return nil, fmt.Errorf("failed to rename term %s/%s: %w", term.Taxonomy, term.Slug, err)
			}
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		term.ID = 0
		term.Count = 0
		if err := tx.Create(&term).Error; err != nil {
			return nil, fmt.Errorf("failed to create term %s/%s: %w", term.Taxonomy, term.Slug, err)
		}
		return &term, nil
	default:
		return nil, fmt.Errorf("failed to look up term %s/%s: %w", term.Taxonomy, term.Slug, err)
	}
}

var managedTaxonomies = []string{models.TaxonomyType, models.TaxonomyVisibility}

// replaceRelationships swaps the product's term assignments. managed selects
// whether the type and visibility taxonomies or every other taxonomy is replaced.
func replaceRelationships(tx *gorm.DB, productID uint, termIDs []uint, managed bool) error {
	scope := "term_id IN (?)"
	if !managed {
		scope = "term_id NOT IN (?)"
	}
	managedTerms := tx.Model(&models.Term{}).Select("id").Where("taxonomy IN ?", managedTaxonomies)

	var previous []uint
	err := tx.Model(&models.TermRelationship{}).
		Where("product_id = ?", productID).
		Where(scope, managedTerms).
		Pluck("term_id", &previous).Error
	if err != nil {
		return fmt.Errorf("failed to read terms of product %d: %w", productID, err)
	}

	if len(previous) > 0 {
		err := tx.Where("product_id = ? AND term_id IN ?", productID, previous).
			Delete(&models.TermRelationship{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear terms of product %d: %w", productID, err)
		}
	}

	if len(termIDs) > 0 {
		rows := make([]models.TermRelationship, 0, len(termIDs))
		for _, id := range termIDs {
			rows = append(rows, models.TermRelationship{ProductID: productID, TermID: id})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to assign terms to product %d: %w", productID, err)
		}
	}

	return recount(tx, append(previous, termIDs...))
}

func recount(tx *gorm.DB, termIDs []uint) error {
	if len(termIDs) == 0 {
		return nil
	}
	counts := tx.Model(&models.TermRelationship{}).
		Select("COUNT(*)").
		Where("term_relationships.term_id = terms.id")
	err := tx.Model(&models.Term{}).
		Where("id IN ?", termIDs).
		Update("count", counts).Error
	if err != nil {
		return fmt.Errorf("failed to recount terms: %w", err)
	}
	return nil
}

// visibilityTerms lists the product_visibility markers implied by the product's state.
func visibilityTerms(p *models.Product) []string {
	var names []string
	if p.Featured {
		names = append(names, models.VisibilityFeatured)
	}
	if p.StockStatus == models.StockOutOfStock {
		names = append(names, models.VisibilityOutOfStock)
	}
	switch p.CatalogVisibility {
	case "catalog":
		names = append(names, models.VisibilityExcludeFromSearch)
	case "search":
		names = append(names, models.VisibilityExcludeFromCatalog)
	case "hidden":
		names = append(names, models.VisibilityExcludeFromCatalog, models.VisibilityExcludeFromSearch)
	}
	if p.AverageRating.IsPositive() {
		names = append(names, fmt.Sprintf("rated-%d", p.AverageRating.Round(0).IntPart()))
	}
	return names
}

func syncVisibility(tx *gorm.DB, p *models.Product) error {
	var terms []models.Term
	if !p.IsVariation() {
		terms = append(terms, models.Term{Taxonomy: models.TaxonomyType, Name: p.Type, Slug: p.Type})
	}
	for _, name := range visibilityTerms(p) {
		terms = append(terms, models.Term{Taxonomy: models.TaxonomyVisibility, Name: name, Slug: name})
	}

	ids := make([]uint, 0, len(terms))
	for _, t := range terms {
		term, err := ensureTerm(tx, t)
		if err != nil {
			return err
		}
		ids = append(ids, term.ID)
	}
	return replaceRelationships(tx, p.ID, ids, true)
}

// DeleteProduct removes a product, its variations and every row hanging off them.
// It returns the deleted product.
func (w *Writer) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var deleted models.Product
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch product %d: %w", id, err)
		}

		var ids []uint
		if err := tx.Model(&models.Product{}).Where("parent_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to fetch children of %d: %w", id, err)
		}
		ids = append(ids, id)

		var termIDs []uint
		if err := tx.Model(&models.TermRelationship{}).Where("product_id IN ?", ids).Pluck("term_id", &termIDs).Error; err != nil {
			return fmt.Errorf("failed to read terms of product %d: %w", id, err)
		}

		deletes := []struct {
			model interface{}
			key   string
		}{
			{&models.TermRelationship{}, "product_id"},
			{&models.ProductAttribute{}, "product_id"},
			{&models.VariationAttribute{}, "variation_id"},
			{&models.GalleryImage{}, "product_id"},
			{&models.ProductLink{}, "product_id"},
			{&models.ProductMeta{}, "product_id"},
			{&models.Review{}, "product_id"},
			{&models.Product{}, "id"},
		}
		for _, d := range deletes {
			if err := tx.Where(d.key+" IN ?", ids).Delete(d.model).Error; err != nil {
				return fmt.Errorf("failed to delete %T of product %d: %w", d.model, id, err)
			}
		}
		return recount(tx, termIDs)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (w *Writer) SaveImage(ctx context.Context, img *models.Image) error {
	if err := w.db.WithContext(ctx).Save(img).Error; err != nil {
		return fmt.Errorf("failed to save image %d: %w", img.ID, err)
	}
	return nil
}

// SaveAttributeTaxonomy creates the attribute when its name is new and refreshes its label otherwise.
func (w *Writer) SaveAttributeTaxonomy(ctx context.Context, attr *models.AttributeTaxonomy) error {
	db := w.db.WithContext(ctx)
	var existing models.AttributeTaxonomy
	err := db.Where("name = ?", attr.Name).First(&existing).Error
	switch {
	case err == nil:
		attr.ID = existing.ID
		if err := db.Model(&existing).Updates(map[string]interface{}{"label": attr.Label}).Error; err != nil {
			return fmt.Errorf("failed to update attribute %s: %w", attr.Name, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(attr).Error; err != nil {
			return fmt.Errorf("failed to create attribute %s: %w", attr.Name, err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up attribute %s: %w", attr.Name, err)
	}
}

// SaveReview stores a review and refreshes the product's rating aggregates.
func (w *Writer) SaveReview(ctx context.Context, review *models.Review) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		var product models.Product
		if err := tx.First(&product, review.ProductID).Error; err != nil {
			return fmt.Errorf("failed to fetch product %d: %w", review.ProductID, err)
		}

		var stats struct {
			Reviews int
			Ratings int
			Total   int
		}
		err := tx.Model(&models.Review{}).
			Select("COUNT(*) AS reviews, COUNT(CASE WHEN rating > 0 THEN 1 END) AS ratings, COALESCE(SUM(rating), 0) AS total").
			Where("product_id = ? AND status = ?", review.ProductID, "approved").
			Scan(&stats).Error
		if err != nil {
			return fmt.Errorf("failed to aggregate reviews of %d: %w", review.ProductID, err)
		}

		product.ReviewCount = stats.Reviews
		product.RatingCount = stats.Ratings
		product.AverageRating = decimal.Zero
		if stats.Ratings > 0 {
			product.AverageRating = decimal.NewFromInt(int64(stats.Total)).
				Div(decimal.NewFromInt(int64(stats.Ratings))).
				Round(2)
		}
		err = tx.Model(&product).Updates(map[string]interface{}{
			"review_count":   product.ReviewCount,
			"rating_count":   product.RatingCount,
			"average_rating": product.AverageRating,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update ratings of %d: %w", review.ProductID, err)
		}
		return syncVisibility(tx, &product)
	})
}
