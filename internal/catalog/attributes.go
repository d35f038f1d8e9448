package catalog

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"catalogapi/internal/models"
	"catalogapi/internal/repository"
)

func attributeKey(name string) string {
	return "attribute_" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// taxonomy returns the attribute taxonomy registered under name, or nil when it
// has been removed.
func (p *Projector) taxonomy(ctx context.Context, name string) (*models.AttributeTaxonomy, error) {
	tax, err := p.source.AttributeTaxonomyByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute %s: %w", name, err)
	}
	return tax, nil
}

func (p *Projector) productAttributes(ctx context.Context, prod *models.Product) (ProductAttributes, error) {
	out := make(ProductAttributes, 0, len(prod.Attributes))
	for _, attr := range prod.Attributes {
		view := ProductAttribute{
			Key:                attributeKey(attr.Name),
			Name:               attr.Name,
			Position:           attr.Position,
			IsAttributeVisible: attr.IsVisible,
			UsedForVariation:   attr.IsVariation,
			Options:            Options{},
		}

		if attr.IsTaxonomy {
			tax, err := p.taxonomy(ctx, attr.Name)
			if err != nil {
				return nil, err
			}
			if tax != nil {
				view.ID = tax.ID
				view.Name = tax.Label
			}
			terms, err := p.source.ProductTerms(ctx, prod.ID, attr.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s terms: %w", attr.Name, err)
			}
			for _, t := range terms {
				view.Options = append(view.Options, Pair{t.Slug, t.Name})
			}
		} else {
			for _, option := range attr.Options() {
				view.Options = append(view.Options, Pair{option, option})
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (p *Projector) variationAttributes(ctx context.Context, variation, parent *models.Product) (VariationAttributes, error) {
	out := make(VariationAttributes, 0, len(variation.VariationAttributes))
	for _, attr := range variation.VariationAttributes {
		// An empty value matches any option and is not listed.
		if attr.Value == "" {
			continue
		}
		view := VariationAttribute{
			Key:    "attribute_" + attr.Name,
			Name:   attr.Name,
			Option: Options{{attr.Value, attr.Value}},
		}

		if attr.IsTaxonomy() {
			tax, err := p.taxonomy(ctx, attr.Name)
			if err != nil {
				return nil, err
			}
			if tax != nil {
				view.ID = tax.ID
				view.Name = tax.Label
			}
			term, err := p.source.TermBySlug(ctx, attr.Name, attr.Value)
			switch {
			case err == nil:
				view.Option = Options{{term.Slug, term.Name}}
			case !errors.Is(err, repository.ErrNotFound):
				return nil, fmt.Errorf("failed to load %s term %s: %w", attr.Name, attr.Value, err)
			}
		} else if parent != nil {
			for _, pa := range parent.Attributes {
				if models.Slugify(pa.Name) == attr.Name {
					view.Name = pa.Name
					break
				}
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// defaultAttributes lists the preselected options of a variable product in
// attribute order.
func (p *Projector) defaultAttributes(ctx context.Context, prod *models.Product) ([]DefaultAttribute, error) {
	if len(prod.DefaultAttributes) == 0 {
		return nil, nil
	}

	var out []DefaultAttribute
	for _, attr := range prod.Attributes {
		value, ok := defaultFor(prod, attr)
		if !ok {
			continue
		}
		def := DefaultAttribute{Name: attr.Name, Option: value}
		if attr.IsTaxonomy {
			tax, err := p.taxonomy(ctx, attr.Name)
			if err != nil {
				return nil, err
			}
			if tax != nil {
				def.ID = tax.ID
				def.Name = tax.Label
			}
			term, err := p.source.TermBySlug(ctx, attr.Name, value)
			if err == nil {
				def.Option = term.Name
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to load %s term %s: %w", attr.Name, value, err)
			}
		}
		out = append(out, def)
	}
	return out, nil
}

func defaultFor(prod *models.Product, attr models.ProductAttribute) (string, bool) {
	for _, key := range []string{attr.Name, models.Slugify(attr.Name)} {
		if v, ok := prod.DefaultAttributes[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// variationSummaries lists the purchasable variations of a variable product.
func (p *Projector) variationSummaries(ctx context.Context, routes Routes, kids *children, mode string) ([]VariationSummary, error) {
	variations, err := kids.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load variations: %w", err)
	}

	var visible []*models.Product
	var imageIDs []uint
	for _, v := range variations {
		if !v.Exists() {
			continue
		}
		if p.settings.HideOutOfStock && !v.IsInStock() {
			continue
		}
		if p.policies.hideInvisible(v) && !(v.IsPublished() && v.HasPrice()) {
			continue
		}
		visible = append(visible, v)
		if v.ImageID != 0 {
			imageIDs = append(imageIDs, v.ImageID)
		}
	}

	images, err := p.source.Images(ctx, imageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load variation images: %w", err)
	}

	out := make([]VariationSummary, 0, len(visible))
	for _, v := range visible {
		attrs := make(Pairs, 0, len(v.VariationAttributes))
		for _, a := range v.VariationAttributes {
			attrs = append(attrs, Pair{"attribute_" + a.Name, a.Value})
		}

		featured := Pairs{}
		if img, ok := images[v.ImageID]; ok {
			featured = p.sources(&img)
		}

		out = append(out, VariationSummary{
			ID:            v.ID,
			SKU:           v.SKU,
			Description:   v.Description,
			Attributes:    attrs,
			FeaturedImage: featured,
			Prices:        p.variationPrices(v, mode),
			AddToCart: VariationSummaryCart{
				IsPurchasable:    isPurchasable(v),
				PurchaseQuantity: p.purchaseQuantity(v),
				RestURL:          p.addToCartURL(routes, v),
			},
		})
	}
	return out, nil
}

func decodeEntities(s string) string {
	return html.UnescapeString(s)
}
