package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"catalogapi/internal/events"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/worker/processors/validation"
)

// Writer persists imported catalog data.
type Writer interface {
	SaveProduct(ctx context.Context, p *models.Product, terms []models.Term) error
	SaveImage(ctx context.Context, img *models.Image) error
	SaveAttributeTaxonomy(ctx context.Context, attr *models.AttributeTaxonomy) error
	SaveReview(ctx context.Context, review *models.Review) error
}

// Stats counts what a sync or import stored.
type Stats struct {
	Products   int
	Variations int
	Reviews    int
	Skipped    int
}

type WooCommerceConnector struct {
	writer    Writer
	publisher events.Publisher
	validator *validation.Validator
	logger    *logger.Logger
}

func New(writer Writer, publisher events.Publisher, logger *logger.Logger) *WooCommerceConnector {
	return &WooCommerceConnector{
		writer:    writer,
		publisher: publisher,
		validator: validation.New(logger),
		logger:    logger,
	}
}

// SyncProducts pulls attributes, products with their variations and reviews
// from a WooCommerce store.
func (wc *WooCommerceConnector) SyncProducts(ctx context.Context, client *Client) (*Stats, error) {
	wc.logger.Info("Syncing products from WooCommerce store: %s", client.storeURL)

	attrs, err := client.GetAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attributes: %w", err)
	}
	transformer, err := wc.saveAttributes(ctx, attrs)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for page, pages := 1, 1; page <= pages; page++ {
		var products []Product
		products, pages, err = client.GetProducts(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch products page %d: %w", page, err)
		}

		for i := range products {
			var variations []Product
			if len(products[i].Variations) > 0 {
				if variations, err = client.GetVariations(ctx, products[i].ID); err != nil {
					return stats, fmt.Errorf("failed to fetch variations of %d: %w", products[i].ID, err)
				}
			}
			if err := wc.store(ctx, transformer, &products[i], variations, stats); err != nil {
				return stats, err
			}
		}
	}

	for page, pages := 1, 1; page <= pages; page++ {
		var reviews []Review
		reviews, pages, err = client.GetReviews(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch reviews page %d: %w", page, err)
		}
		for i := range reviews {
			if err := wc.writer.SaveReview(ctx, transformer.TransformReview(&reviews[i])); err != nil {
				wc.logger.Warn("Skipping review %d: %v", reviews[i].ID, err)
				continue
			}
			stats.Reviews++
		}
	}

	if err := wc.publisher.Publish(ctx, events.New(events.TermsUpdated, 0, 0)); err != nil {
		return stats, fmt.Errorf("failed to publish term update: %w", err)
	}

	wc.logger.Info("WooCommerce sync completed: %d products, %d variations, %d reviews, %d skipped",
		stats.Products, stats.Variations, stats.Reviews, stats.Skipped)
	return stats, nil
}

// Export is the file format read by ImportProducts: WooCommerce product
// payloads with their variations and optionally the store's attributes.
type Export struct {
	Attributes []AttributeTaxonomy `json:"attributes"`
	Products   []ExportedProduct   `json:"products"`
}

type ExportedProduct struct {
	Product
	VariationObjects []Product `json:"variation_objects"`
}

// ImportProducts reads an Export document, or a bare array of products, from r.
func (wc *WooCommerceConnector) ImportProducts(ctx context.Context, r io.Reader) (*Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		if err := json.Unmarshal(data, &export.Products); err != nil {
			return nil, fmt.Errorf("failed to decode import: %w", err)
		}
	}

	transformer, err := wc.saveAttributes(ctx, export.Attributes)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for i := range export.Products {
		ep := &export.Products[i]
		if err := wc.store(ctx, transformer, &ep.Product, ep.VariationObjects, stats); err != nil {
			return stats, err
		}
	}

	if err := wc.publisher.Publish(ctx, events.New(events.TermsUpdated, 0, 0)); err != nil {
		return stats, fmt.Errorf("failed to publish term update: %w", err)
	}
	return stats, nil
}

func (wc *WooCommerceConnector) saveAttributes(ctx context.Context, attrs []AttributeTaxonomy) (*Transformer, error) {
	for _, a := range attrs {
		attr := &models.AttributeTaxonomy{
			Name:        TaxonomyName(a)[len(models.AttributeTaxonomyPrefix):],
			Label:       a.Name,
			Type:        a.Type,
			OrderBy:     a.OrderBy,
			HasArchives: a.HasArchives,
		}
		if err := wc.writer.SaveAttributeTaxonomy(ctx, attr); err != nil {
			return nil, err
		}
	}
	return NewTransformer(attrs), nil
}

// store saves a product and its variations. Products that fail validation are
// counted as skipped rather than aborting the run.
func (wc *WooCommerceConnector) store(ctx context.Context, transformer *Transformer, wp *Product, variations []Product, stats *Stats) error {
	t, err := transformer.TransformProduct(wp)
	if err != nil {
		wc.logger.Warn("Skipping product %d: %v", wp.ID, err)
		stats.Skipped++
		return nil
	}
	if err := wc.validator.ValidateProduct(t.Product); err != nil {
		wc.logger.Warn("Skipping product %d: %v", wp.ID, err)
		stats.Skipped++
		return nil
	}
	if err := wc.save(ctx, t); err != nil {
		return err
	}
	stats.Products++

	published := []events.Event{events.New(events.ProductUpdated, t.Product.ID, t.Product.ParentID)}
	for i := range variations {
		vt, err := transformer.TransformVariation(t.Product, &variations[i])
		if err == nil {
			err = wc.validator.ValidateProduct(vt.Product)
		}
		if err != nil {
			wc.logger.Warn("Skipping variation %d of %d: %v", variations[i].ID, wp.ID, err)
			stats.Skipped++
			continue
		}
		if err := wc.save(ctx, vt); err != nil {
			return err
		}
		stats.Variations++
		published = append(published, events.New(events.ProductUpdated, vt.Product.ID, t.Product.ID))
	}

	if err := wc.publisher.Publish(ctx, published...); err != nil {
		wc.logger.Error("Failed to publish events for product %d: %v", t.Product.ID, err)
	}
	return nil
}

func (wc *WooCommerceConnector) save(ctx context.Context, t *Transformed) error {
	for i := range t.Images {
		if err := wc.writer.SaveImage(ctx, &t.Images[i]); err != nil {
			return err
		}
	}
	return wc.writer.SaveProduct(ctx, t.Product, t.Terms)
}
