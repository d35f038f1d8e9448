package processors

import (
	"context"
	"errors"
	"fmt"

	"catalogapi/internal/cache"
	"catalogapi/internal/events"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/repository"
	"catalogapi/internal/worker/processors/validation"
)

// Invalidator drops cached entries.
type Invalidator interface {
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

type ProductLoader interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
}

// EventProcessor keeps cached catalog reads coherent with product changes.
type EventProcessor struct {
	logger    *logger.Logger
	cache     Invalidator
	products  ProductLoader
	validator *validation.Validator
}

func NewEventProcessor(logger *logger.Logger, c Invalidator, products ProductLoader) *EventProcessor {
	return &EventProcessor{
		logger:    logger,
		cache:     c,
		products:  products,
		validator: validation.New(logger),
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	ep.logger.Debug("Processing event %s: %s product=%d", event.ID, event.Type, event.ProductID)

	switch event.Type {
	case events.ProductCreated, events.ProductUpdated:
		if err := ep.invalidateProduct(ctx); err != nil {
			return err
		}
		return ep.audit(ctx, event.ProductID)
	case events.ProductDeleted:
		return ep.invalidateProduct(ctx)
	case events.TermsUpdated:
		if event.Taxonomy == "" {
			return ep.cache.DeletePattern(ctx, cache.KeyTermPrefix+"*")
		}
		return ep.cache.Delete(ctx, cache.KeyTerms(event.Taxonomy))
	}

	ep.logger.Warn("Ignoring event %s with unknown type %q", event.ID, event.Type)
	return nil
}

// invalidateProduct drops the caches a product change can affect: the on-sale
// set and the term lists whose counts moved.
func (ep *EventProcessor) invalidateProduct(ctx context.Context) error {
	if err := ep.cache.Delete(ctx, cache.KeyOnSaleIDs); err != nil {
		return fmt.Errorf("failed to invalidate on-sale ids: %w", err)
	}
	keys := []string{cache.KeyTerms(models.TaxonomyCategory), cache.KeyTerms(models.TaxonomyTag)}
	if err := ep.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate term lists: %w", err)
	}
	return nil
}

// audit reports products that were stored in a state the API cannot render consistently.
func (ep *EventProcessor) audit(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	p, err := ep.products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if err := ep.validator.ValidateProduct(p); err != nil {
		ep.logger.Warn("Product %d is inconsistent: %v", id, err)
	}
	return nil
}
