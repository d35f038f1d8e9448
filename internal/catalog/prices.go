package catalog

import (
	"context"
	"fmt"

	"catalogapi/internal/models"

	"github.com/shopspring/decimal"
)

func (p *Projector) display(prod *models.Product, d decimal.NullDecimal, mode string) string {
	if !d.Valid {
		return ""
	}
	return p.settings.Currency.Format(p.settings.Tax.Display(prod, d.Decimal, mode))
}

func (p *Projector) prices(ctx context.Context, prod *models.Product, kids *children, mode string) (Prices, error) {
	now := p.now()
	out := Prices{
		Price:        p.display(prod, prod.Price, mode),
		RegularPrice: p.display(prod, prod.RegularPrice, mode),
		SalePrice:    p.display(prod, prod.SalePrice, mode),
		OnSale:       prod.IsOnSale(now),
		DateOnSale:   p.dateOnSale(prod),
		Currency:     p.settings.Currency,
	}

	switch {
	case prod.IsVariable():
		variations, err := kids.get(ctx)
		if err != nil {
			return Prices{}, fmt.Errorf("failed to load variations of %d: %w", prod.ID, err)
		}
		p.variablePrices(&out, prod, variations, mode)
	case prod.IsType(models.TypeGrouped):
		grouped, err := p.source.GroupedChildren(ctx, prod)
		if err != nil {
			return Prices{}, fmt.Errorf("failed to load grouped products of %d: %w", prod.ID, err)
		}
		var prices []decimal.Decimal
		for _, child := range grouped {
			if !child.IsPublished() || !child.HasPrice() {
				continue
			}
			prices = append(prices, p.settings.Tax.Display(child, child.Price.Decimal, mode))
			if child.IsOnSale(now) {
				out.OnSale = true
			}
		}
		out.PriceRange = p.settings.Currency.GroupedRange(prices)
	}

	out.PriceRange = p.policies.priceRange(out.PriceRange, prod)
	return out, nil
}

// sellable reports whether a variation takes part in its parent's prices.
func (p *Projector) sellable(v *models.Product) bool {
	if !v.Exists() || !v.IsPublished() {
		return false
	}
	return !p.settings.HideOutOfStock || v.IsInStock()
}

// variablePrices derives a variable product's prices from its sellable
// variations: the cheapest one sets the price and together they span the range.
func (p *Projector) variablePrices(out *Prices, prod *models.Product, variations []*models.Product, mode string) {
	if len(variations) == 0 {
		return
	}

	now := p.now()
	var (
		prices    []decimal.Decimal
		lowest    *decimal.Decimal
		lowestReg *decimal.Decimal
		onSale    bool
	)
	for _, v := range variations {
		if !p.sellable(v) {
			continue
		}
		if v.IsOnSale(now) {
			onSale = true
		}
		if v.RegularPrice.Valid {
			reg := p.settings.Tax.Display(v, v.RegularPrice.Decimal, mode)
			if lowestReg == nil || reg.LessThan(*lowestReg) {
				lowestReg = &reg
			}
		}
		if !v.HasPrice() {
			continue
		}
		price := p.settings.Tax.Display(v, v.Price.Decimal, mode)
		prices = append(prices, price)
		if lowest == nil || price.LessThan(*lowest) {
			lowest = &price
		}
	}

	if lowest != nil {
		out.Price = p.settings.Currency.Format(*lowest)
	}
	if lowestReg != nil {
		out.RegularPrice = p.settings.Currency.Format(*lowestReg)
	}
	if !prod.SalePrice.Valid {
		out.SalePrice = ""
	}
	out.OnSale = onSale

	if len(prices) == 0 {
		out.PriceRange = p.policies.emptyVariablePrice(prod)
		return
	}
	out.PriceRange = p.settings.Currency.VariableRange(prices)
}

func (p *Projector) variationPrices(v *models.Product, mode string) VariationPrices {
	return VariationPrices{
		Price:        p.display(v, v.Price, mode),
		RegularPrice: p.display(v, v.RegularPrice, mode),
		SalePrice:    p.display(v, v.SalePrice, mode),
		OnSale:       v.IsOnSale(p.now()),
		DateOnSale:   p.dateOnSale(v),
		Currency:     p.settings.Currency,
	}
}

// connected summarizes linked products, skipping ids that no longer resolve.
func (p *Projector) connected(ctx context.Context, routes Routes, ids []uint, mode string) ([]ConnectedProduct, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	products, err := p.source.Products(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked products: %w", err)
	}

	out := make([]ConnectedProduct, 0, len(products))
	for _, prod := range products {
		price := decimal.Zero
		if prod.HasPrice() {
			price = p.settings.Tax.Display(prod, prod.Price.Decimal, mode)
		}
		out = append(out, ConnectedProduct{
			ID:        prod.ID,
			Name:      prod.Name,
			Permalink: routes.Permalink(prod.Slug),
			Price:     p.settings.Currency.Amount(price),
			AddToCart: ConnectedCart{
				Text:        addToCartText(prod),
				Description: addToCartDescription(prod),
				RestURL:     p.addToCartURL(routes, prod),
			},
			RestURL: routes.Product(prod.ID),
		})
	}
	return out, nil
}
