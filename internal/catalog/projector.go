// Package catalog projects catalog entities into the versioned JSON documents
// served by the API.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalogapi/internal/config"
	"catalogapi/internal/models"
	"catalogapi/internal/pricing"
)

// Request carries the per-request options that shape a projection.
type Request struct {
	Namespace   string
	Fields      []string
	TaxDisplay  string
	ShowReviews bool
}

type Projector struct {
	source   Source
	settings Settings
	policies Policies
	now      func() time.Time
}

func NewProjector(source Source, settings Settings, policies Policies) *Projector {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Tax == nil {
		settings.Tax = pricing.NewCalculator(config.Store{})
	}
	return &Projector{
		source:   source,
		settings: settings,
		policies: policies,
		now:      time.Now,
	}
}

// Routes returns the URL builder of a namespace.
func (p *Projector) Routes(namespace string) Routes {
	return Routes{
		BaseURL:     p.settings.BaseURL,
		Namespace:   namespace,
		SiteURL:     p.settings.SiteURL,
		ShopPageURL: p.settings.ShopPageURL,
	}
}

// children loads the variations of a variable product once per projection.
type children struct {
	source Source
	parent *models.Product
	loaded bool
	items  []*models.Product
}

func (c *children) get(ctx context.Context) ([]*models.Product, error) {
	if c.loaded {
		return c.items, nil
	}
	if c.parent.IsVariable() {
		items, err := c.source.Children(ctx, c.parent.ID)
		if err != nil {
			return nil, err
		}
		c.items = items
	}
	c.loaded = true
	return c.items, nil
}

// Any projects a product or, for variation types, a variation.
func (p *Projector) Any(ctx context.Context, prod *models.Product, req Request) (View, error) {
	if prod.IsVariation() {
		return p.Variation(ctx, prod, nil, req)
	}
	return p.Product(ctx, prod, req)
}

// Product projects a non-variation product.
func (p *Projector) Product(ctx context.Context, prod *models.Product, req Request) (*ProductView, error) {
	fields := SelectFields(req.Fields, productFields)
	routes := p.Routes(req.Namespace)
	mode := p.settings.Tax.Mode(req.TaxDisplay)
	kids := &children{source: p.source, parent: prod}

	v := &ProductView{
		ID:               prod.ID,
		ParentID:         prod.ParentID,
		Name:             prod.Name,
		Type:             prod.Type,
		Slug:             prod.Slug,
		Permalink:        routes.Permalink(prod.Slug),
		SKU:              prod.SKU,
		Description:      prod.Description,
		ShortDescription: prod.ShortDescription,
		Dates:            p.dates(prod),
		Featured:         prod.Featured,
		HiddenConditions: HiddenConditions{
			Virtual:          prod.Virtual,
			Downloadable:     prod.Downloadable,
			ManageStock:      prod.ManageStock,
			SoldIndividually: prod.SoldIndividually,
			ReviewsAllowed:   prod.ReviewsAllowed,
			ShippingRequired: prod.NeedsShipping(),
		},
		AverageRating: prod.AverageRating.StringFixed(2),
		ReviewCount:   prod.ReviewCount,
		RatingCount:   prod.RatingCount,
		RatedOutOf:    ratedOutOf(prod),
		Stock:         stock(prod),
		Weight:        Weight{Value: prod.Weight, Unit: p.settings.WeightUnit},
		Dimensions: Dimensions{
			Length: prod.Length,
			Width:  prod.Width,
			Height: prod.Height,
			Unit:   p.settings.DimensionUnit,
		},
		TotalSales: prod.TotalSales,
		MetaData:   metaData(prod),
		fields:     fields,
	}

	if prod.IsType(models.TypeExternal) {
		v.ExternalURL = prod.ProductURL
		v.ButtonText = prod.ButtonText
	}
	if prod.IsType(models.TypeGrouped) {
		v.GroupedProducts = prod.LinkedIDs(models.LinkGrouped)
	}

	var err error
	if fields.Includes("prices") {
		if v.Prices, err = p.prices(ctx, prod, kids, mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("images") {
		if v.Images, err = p.images(ctx, prod); err != nil {
			return nil, err
		}
	}
	if fields.Includes("categories") {
		if v.Categories, err = p.terms(ctx, routes, prod.ID, models.TaxonomyCategory); err != nil {
			return nil, err
		}
	}
	if fields.Includes("tags") {
		if v.Tags, err = p.terms(ctx, routes, prod.ID, models.TaxonomyTag); err != nil {
			return nil, err
		}
	}
	if fields.Includes("attributes") {
		if v.Attributes, err = p.productAttributes(ctx, prod); err != nil {
			return nil, err
		}
	}
	if fields.Includes("default_attributes") {
		if v.DefaultAttributes, err = p.defaultAttributes(ctx, prod); err != nil {
			return nil, err
		}
	}
	if fields.Includes("variations") {
		if v.Variations, err = p.variationSummaries(ctx, routes, kids, mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("reviews") && req.ShowReviews {
		if v.Reviews, err = p.reviews(ctx, prod.ID); err != nil {
			return nil, err
		}
	}
	if fields.Includes("related") {
		ids, err := p.source.RelatedIDs(ctx, prod, p.policies.relatedLimit(prod, p.settings.RelatedLimit))
		if err != nil {
			return nil, fmt.Errorf("failed to load related products: %w", err)
		}
		if v.Related, err = p.connected(ctx, routes, ids, mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("upsells") {
		if v.Upsells, err = p.connected(ctx, routes, prod.LinkedIDs(models.LinkUpsell), mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("cross_sells") {
		if v.CrossSells, err = p.connected(ctx, routes, prod.LinkedIDs(models.LinkCrossSell), mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("add_to_cart") {
		v.AddToCart = AddToCart{
			Text:          addToCartText(prod),
			Description:   addToCartDescription(prod),
			HasOptions:    hasOptions(prod),
			IsPurchasable: isPurchasable(prod),
			RestURL:       p.addToCartURL(routes, prod),
		}
		if !prod.IsVariable() && !prod.IsType(models.TypeExternal) {
			qty := p.purchaseQuantity(prod)
			v.AddToCart.PurchaseQuantity = &qty
		}
	}
	if fields.Includes(linksField) {
		if v.Links, err = p.productLinks(ctx, routes, prod, kids); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Variation projects a variation of parent. parent may be nil when the
// variation is listed on its own.
func (p *Projector) Variation(ctx context.Context, variation, parent *models.Product, req Request) (*VariationView, error) {
	fields := SelectFields(req.Fields, variationFields)
	routes := p.Routes(req.Namespace)
	mode := p.settings.Tax.Mode(req.TaxDisplay)

	if parent == nil && variation.ParentID != 0 {
		loaded, err := p.source.Get(ctx, variation.ParentID)
		if err == nil {
			parent = loaded
		}
	}

	permalink := routes.Permalink(variation.Slug)
	if parent != nil {
		permalink = routes.VariationPermalink(parent.Slug, variation.VariationAttributes)
	}

	v := &VariationView{
		ID:          variation.ID,
		ParentID:    variation.ParentID,
		Name:        variation.Name,
		Slug:        variation.Slug,
		Permalink:   permalink,
		SKU:         variation.SKU,
		Description: variation.Description,
		Dates:       p.dates(variation),
		Featured:    variation.Featured,
		HiddenConditions: VariationHiddenConditions{
			Virtual:          variation.Virtual,
			Downloadable:     variation.Downloadable,
			ManageStock:      variation.ManageStock,
			SoldIndividually: variation.SoldIndividually,
			ShippingRequired: variation.NeedsShipping(),
		},
		Stock:  stock(variation),
		Weight: Weight{Value: variation.Weight, Unit: p.settings.WeightUnit},
		Dimensions: Dimensions{
			Length: variation.Length,
			Width:  variation.Width,
			Height: variation.Height,
			Unit:   p.settings.DimensionUnit,
		},
		TotalSales: variation.TotalSales,
		MetaData:   metaData(variation),
		fields:     fields,
	}

	var err error
	if fields.Includes("prices") {
		if v.Prices, err = p.prices(ctx, variation, &children{source: p.source, parent: variation}, mode); err != nil {
			return nil, err
		}
	}
	if fields.Includes("images") {
		if v.Images, err = p.images(ctx, variation); err != nil {
			return nil, err
		}
	}
	if fields.Includes("categories") {
		if v.Categories, err = p.terms(ctx, routes, variation.ID, models.TaxonomyCategory); err != nil {
			return nil, err
		}
	}
	if fields.Includes("tags") {
		if v.Tags, err = p.terms(ctx, routes, variation.ID, models.TaxonomyTag); err != nil {
			return nil, err
		}
	}
	if fields.Includes("attributes") {
		if v.Attributes, err = p.variationAttributes(ctx, variation, parent); err != nil {
			return nil, err
		}
	}
	if fields.Includes("add_to_cart") {
		qty := p.purchaseQuantity(variation)
		v.AddToCart = VariationAddToCart{
			Text:             addToCartText(variation),
			Description:      addToCartDescription(variation),
			IsPurchasable:    isPurchasable(variation),
			PurchaseQuantity: &qty,
			RestURL:          p.addToCartURL(routes, variation),
		}
	}
	if fields.Includes(linksField) {
		v.Links = p.variationLinks(routes, variation, parent, permalink)
	}

	return v, nil
}

const dateLayout = "2006-01-02T15:04:05"

func (p *Projector) date(t *time.Time, gmt bool) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	var s string
	if gmt {
		s = t.UTC().Format(dateLayout)
	} else {
		s = t.In(p.settings.Location).Format(dateLayout)
	}
	return &s
}

func (p *Projector) dates(prod *models.Product) Dates {
	return Dates{
		Created:     p.date(&prod.CreatedAt, false),
		CreatedGMT:  p.date(&prod.CreatedAt, true),
		Modified:    p.date(&prod.UpdatedAt, false),
		ModifiedGMT: p.date(&prod.UpdatedAt, true),
	}
}

func (p *Projector) dateOnSale(prod *models.Product) DateOnSale {
	return DateOnSale{
		From:    p.date(prod.DateOnSaleFrom, false),
		FromGMT: p.date(prod.DateOnSaleFrom, true),
		To:      p.date(prod.DateOnSaleTo, false),
		ToGMT:   p.date(prod.DateOnSaleTo, true),
	}
}

func ratedOutOf(prod *models.Product) string {
	if !prod.AverageRating.IsPositive() {
		return ""
	}
	text := fmt.Sprintf("Rated %s out of 5", prod.AverageRating.StringFixed(2))
	switch {
	case prod.RatingCount == 1:
		text += " based on 1 customer rating"
	case prod.RatingCount > 1:
		text += fmt.Sprintf(" based on %d customer ratings", prod.RatingCount)
	}
	return text
}

func stock(prod *models.Product) Stock {
	return Stock{
		IsInStock:         prod.IsInStock(),
		StockQuantity:     prod.StockQuantity,
		StockStatus:       prod.StockStatus,
		Backorders:        prod.Backorders,
		BackordersAllowed: prod.BackordersAllowed(),
		Backordered:       prod.IsOnBackorder(),
		LowStockAmount:    prod.LowStockAmount,
	}
}

func metaData(prod *models.Product) MetaData {
	var out MetaData
	for _, m := range prod.Meta {
		if m.IsProtected() {
			continue
		}
		value := []byte(m.Value)
		if len(value) == 0 {
			value = []byte("null")
		}
		out = append(out, MetaEntry{ID: m.ID, Key: m.Key, Value: value})
	}
	return out
}

func (p *Projector) terms(ctx context.Context, routes Routes, productID uint, taxonomy string) ([]TermSummary, error) {
	terms, err := p.source.ProductTerms(ctx, productID, taxonomy)
	if err != nil {
		return nil, err
	}
	return Summaries(routes, terms), nil
}

// Summaries renders terms in their compact form.
func Summaries(routes Routes, terms []models.Term) []TermSummary {
	out := make([]TermSummary, 0, len(terms))
	for _, t := range terms {
		out = append(out, TermSummary{
			ID:      t.ID,
			Name:    t.Name,
			Slug:    t.Slug,
			RestURL: routes.Term(t.Taxonomy, t.ID),
		})
	}
	return out
}

func (p *Projector) reviews(ctx context.Context, productID uint) ([]Review, error) {
	reviews, err := p.source.Reviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	out := make([]Review, 0, len(reviews))
	for i := range reviews {
		out = append(out, p.Review(&reviews[i]))
	}
	return out, nil
}

// Review projects a single approved review.
func (p *Projector) Review(r *models.Review) Review {
	return Review{
		ID:             r.ID,
		DateCreated:    p.date(&r.CreatedAt, false),
		DateCreatedGMT: p.date(&r.CreatedAt, true),
		ProductID:      r.ProductID,
		Reviewer:       r.Reviewer,
		Review:         r.Content,
		Rating:         r.Rating,
		Verified:       r.Verified,
	}
}

func (p *Projector) productLinks(ctx context.Context, routes Routes, prod *models.Product, kids *children) (Links, error) {
	var links Links
	links.Add("self", Link{Href: routes.Product(prod.ID), Permalink: routes.Permalink(prod.Slug)})
	links.Add("collection", Link{Href: routes.Products(), Permalink: p.settings.ShopPageURL})

	if prod.ParentID != 0 {
		link := Link{Href: routes.Product(prod.ParentID)}
		if parent, err := p.source.Get(ctx, prod.ParentID); err == nil {
			link.Permalink = routes.Permalink(parent.Slug)
		}
		links.Add("parent_product", link)
	}

	if prod.IsVariable() {
		variations, err := kids.get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load variations of %d: %w", prod.ID, err)
		}
		for _, child := range variations {
			links.Add("variations", Link{
				Href:      routes.Variation(prod.ID, child.ID),
				Permalink: routes.VariationPermalink(prod.Slug, child.VariationAttributes),
			})
		}
	}
	return links, nil
}

func (p *Projector) variationLinks(routes Routes, variation, parent *models.Product, permalink string) Links {
	var links Links
	links.Add("self", Link{Href: routes.Variation(variation.ParentID, variation.ID), Permalink: permalink})
	links.Add("collection", Link{Href: routes.Variations(variation.ParentID), Permalink: p.settings.ShopPageURL})
	if variation.ParentID != 0 {
		up := Link{Href: routes.Product(variation.ParentID)}
		if parent != nil {
			up.Permalink = routes.Permalink(parent.Slug)
		}
		links.Add("up", up)
	}
	return links
}

func isPurchasable(prod *models.Product) bool {
	if prod.IsType(models.TypeExternal, models.TypeGrouped) {
		return false
	}
	return prod.Exists() && prod.IsPublished() && prod.HasPrice()
}

func hasOptions(prod *models.Product) bool {
	switch {
	case prod.IsVariable():
		return true
	case prod.IsType(models.TypeGrouped):
		return len(prod.LinkedIDs(models.LinkGrouped)) > 0
	}
	return false
}

func addToCartText(prod *models.Product) string {
	switch {
	case prod.IsType(models.TypeExternal):
		if prod.ButtonText != "" {
			return prod.ButtonText
		}
		return "Buy product"
	case prod.IsType(models.TypeGrouped):
		return "View products"
	case prod.IsVariable():
		if isPurchasable(prod) {
			return "Select options"
		}
		return "Read more"
	}
	if isPurchasable(prod) && prod.IsInStock() {
		return "Add to cart"
	}
	return "Read more"
}

func addToCartDescription(prod *models.Product) string {
	switch {
	case prod.IsType(models.TypeExternal):
		if prod.ButtonText != "" {
			return prod.ButtonText
		}
		return "Buy product"
	case prod.IsType(models.TypeGrouped):
		return fmt.Sprintf("View products in the “%s” group", prod.Name)
	case prod.IsVariable():
		if isPurchasable(prod) {
			return fmt.Sprintf("Select options for “%s”", prod.Name)
		}
		return fmt.Sprintf("Read more about “%s”", prod.Name)
	}
	if isPurchasable(prod) && prod.IsInStock() {
		return fmt.Sprintf("Add “%s” to your cart", prod.Name)
	}
	return fmt.Sprintf("Read more about “%s”", prod.Name)
}

func (p *Projector) purchaseQuantity(prod *models.Product) PurchaseQuantity {
	max := -1
	switch {
	case prod.SoldIndividually:
		max = 1
	case prod.ManageStock && !prod.BackordersAllowed() && prod.StockQuantity != nil:
		max = *prod.StockQuantity
		if max < 0 {
			max = 0
		}
	}
	return PurchaseQuantity{
		MinPurchase: p.policies.minPurchase(prod, 1),
		MaxPurchase: p.policies.maxPurchase(prod, max),
	}
}

// addToCartURL links to the cart endpoint. Types that cannot be added by id get no link.
func (p *Projector) addToCartURL(routes Routes, prod *models.Product) string {
	link := routes.AddToCart(prod.ID)
	switch {
	case prod.IsVariation():
		var b strings.Builder
		b.WriteString(link)
		for _, a := range prod.VariationAttributes {
			if a.Value == "" {
				continue
			}
			b.WriteString("&variation[attribute_" + a.Name + "]=" + a.Value)
		}
		return decodeEntities(b.String())
	case prod.IsVariable(), prod.IsType(models.TypeExternal, models.TypeGrouped):
		return ""
	}
	return p.policies.addToCartURL(link, prod)
}
