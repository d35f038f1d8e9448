package catalog

import (
	"catalogapi/internal/models"
	"catalogapi/internal/pricing"
)

// Policies are extension points consulted while projecting. A nil func keeps
// the default behaviour.
type Policies struct {
	MinPurchase func(p *models.Product, min int) int
	MaxPurchase func(p *models.Product, max int) int

	// HideInvisibleVariations decides whether disabled or unpriced variations
	// are dropped from a parent's variation list. Defaults to true.
	HideInvisibleVariations func(v *models.Product) bool

	// AddToCartURL may rewrite the add-to-cart link of directly purchasable types.
	AddToCartURL func(url string, p *models.Product) string

	// EmptyVariablePrice supplies the range of a variable product whose
	// variations carry no price.
	EmptyVariablePrice func(p *models.Product) pricing.Range
	PriceRange         func(r pricing.Range, p *models.Product) pricing.Range

	ImageSizes   func(sizes []string) []string
	RelatedLimit func(p *models.Product, limit int) int
}

func (pol Policies) minPurchase(p *models.Product, min int) int {
	if pol.MinPurchase != nil {
		return pol.MinPurchase(p, min)
	}
	return min
}

func (pol Policies) maxPurchase(p *models.Product, max int) int {
	if pol.MaxPurchase != nil {
		return pol.MaxPurchase(p, max)
	}
	return max
}

func (pol Policies) hideInvisible(v *models.Product) bool {
	if pol.HideInvisibleVariations != nil {
		return pol.HideInvisibleVariations(v)
	}
	return true
}

func (pol Policies) addToCartURL(url string, p *models.Product) string {
	if pol.AddToCartURL != nil {
		return pol.AddToCartURL(url, p)
	}
	return url
}

func (pol Policies) emptyVariablePrice(p *models.Product) pricing.Range {
	if pol.EmptyVariablePrice != nil {
		return pol.EmptyVariablePrice(p)
	}
	return pricing.Range{}
}

func (pol Policies) priceRange(r pricing.Range, p *models.Product) pricing.Range {
	if pol.PriceRange != nil {
		return pol.PriceRange(r, p)
	}
	return r
}

func (pol Policies) imageSizes(sizes []string) []string {
	if pol.ImageSizes != nil {
		return pol.ImageSizes(sizes)
	}
	return sizes
}

func (pol Policies) relatedLimit(p *models.Product, limit int) int {
	if pol.RelatedLimit != nil {
		return pol.RelatedLimit(p, limit)
	}
	return limit
}
