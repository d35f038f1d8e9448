package woocommerce

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"catalogapi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02T15:04:05"

// Transformer converts WooCommerce products into catalog models.
type Transformer struct {
	// attribute taxonomy names by WooCommerce attribute id, e.g. 1 -> "pa_color"
	taxonomies map[uint]string
}

func NewTransformer(attrs []AttributeTaxonomy) *Transformer {
	t := &Transformer{taxonomies: make(map[uint]string, len(attrs))}
	for _, a := range attrs {
		t.taxonomies[a.ID] = TaxonomyName(a)
	}
	return t
}

// TaxonomyName returns the term taxonomy backing a global attribute.
func TaxonomyName(a AttributeTaxonomy) string {
	if strings.HasPrefix(a.Slug, models.AttributeTaxonomyPrefix) {
		return a.Slug
	}
	return models.AttributeTaxonomyPrefix + models.Slugify(a.Name)
}

// Transformed is a product ready for the repository writer.
type Transformed struct {
	Product *models.Product
	Terms   []models.Term
	Images  []models.Image
}

func (t *Transformer) taxonomy(id uint, name string) string {
	if tax, ok := t.taxonomies[id]; ok {
		return tax
	}
	return models.AttributeTaxonomyPrefix + models.Slugify(name)
}

// TransformProduct converts a WooCommerce product to our canonical format.
func (t *Transformer) TransformProduct(wp *Product) (*Transformed, error) {
	p, err := t.base(wp)
	if err != nil {
		return nil, err
	}
	p.Type = wp.Type
	if p.Type == "" {
		p.Type = models.TypeSimple
	}
	p.ParentID = wp.ParentID
	p.Name = wp.Name
	p.ShortDescription = wp.ShortDescription
	p.Featured = wp.Featured
	p.ProductURL = wp.ExternalURL
	p.ButtonText = wp.ButtonText
	p.ReviewsAllowed = wp.ReviewsAllowed
	p.RatingCount = wp.RatingCount
	if wp.AverageRating != "" {
		if p.AverageRating, err = decimal.NewFromString(wp.AverageRating); err != nil {
			return nil, fmt.Errorf("invalid average rating %q: %w", wp.AverageRating, err)
		}
	}

	out := &Transformed{Product: p}

	for i, img := range wp.Images {
		out.Images = append(out.Images, image(img))
		if i == 0 {
			p.ImageID = img.ID
			continue
		}
		p.Gallery = append(p.Gallery, models.GalleryImage{ImageID: img.ID, Position: i - 1})
	}

	for _, c := range wp.Categories {
		out.Terms = append(out.Terms, models.Term{Taxonomy: models.TaxonomyCategory, Name: c.Name, Slug: c.Slug})
	}
	for _, tag := range wp.Tags {
		out.Terms = append(out.Terms, models.Term{Taxonomy: models.TaxonomyTag, Name: tag.Name, Slug: tag.Slug})
	}

	for _, a := range wp.Attributes {
		attr := models.ProductAttribute{
			Name:        a.Name,
			Position:    a.Position,
			IsVisible:   a.Visible,
			IsVariation: a.Variation,
		}
		if a.ID != 0 {
			attr.Name = t.taxonomy(a.ID, a.Name)
			attr.IsTaxonomy = true
			for _, option := range a.Options {
				out.Terms = append(out.Terms, models.Term{Taxonomy: attr.Name, Name: option, Slug: models.Slugify(option)})
			}
		} else {
			attr.Value = strings.Join(a.Options, " | ")
		}
		p.Attributes = append(p.Attributes, attr)
	}

	if len(wp.DefaultAttributes) > 0 {
		p.DefaultAttributes = datatypes.JSONMap{}
		for _, d := range wp.DefaultAttributes {
			if d.ID != 0 {
				p.DefaultAttributes[t.taxonomy(d.ID, d.Name)] = models.Slugify(d.Option)
			} else {
				p.DefaultAttributes[models.Slugify(d.Name)] = d.Option
			}
		}
	}

	p.Links = append(p.Links, links(models.LinkUpsell, wp.UpsellIDs)...)
	p.Links = append(p.Links, links(models.LinkCrossSell, wp.CrossSellIDs)...)
	p.Links = append(p.Links, links(models.LinkGrouped, wp.GroupedProducts)...)

	return out, nil
}

// TransformVariation converts a variation of parent. Variation payloads carry
// no type or name, so both are derived from the parent.
func (t *Transformer) TransformVariation(parent *models.Product, wv *Product) (*Transformed, error) {
	p, err := t.base(wv)
	if err != nil {
		return nil, err
	}
	p.ParentID = parent.ID
	p.Type = models.TypeVariation
	if parent.IsType(models.TypeVariableSubscription) {
		p.Type = models.TypeSubscriptionVariation
	}

	var labels []string
	for _, a := range wv.Attributes {
		va := models.VariationAttribute{Name: models.Slugify(a.Name), Value: a.Option}
		if a.ID != 0 {
			va.Name = t.taxonomy(a.ID, a.Name)
			va.Value = models.Slugify(a.Option)
		}
		p.VariationAttributes = append(p.VariationAttributes, va)
		if a.Option != "" {
			labels = append(labels, a.Option)
		}
	}
	p.Name = parent.Name
	if len(labels) > 0 {
		p.Name += " - " + strings.Join(labels, ", ")
	}
	if p.Slug == "" {
		p.Slug = models.Slugify(p.Name)
	}

	out := &Transformed{Product: p}
	if wv.Image != nil && wv.Image.ID != 0 {
		p.ImageID = wv.Image.ID
		out.Images = append(out.Images, image(*wv.Image))
	}
	return out, nil
}

// base copies the fields products and variations share.
func (t *Transformer) base(wp *Product) (*models.Product, error) {
	p := &models.Product{
		ID:                wp.ID,
		Status:            wp.Status,
		Slug:              wp.Slug,
		SKU:               wp.SKU,
		Description:       wp.Description,
		MenuOrder:         wp.MenuOrder,
		CatalogVisibility: wp.CatalogVisibility,
		TaxStatus:         wp.TaxStatus,
		TaxClass:          wp.TaxClass,
		Virtual:           wp.Virtual,
		Downloadable:      wp.Downloadable,
		StockQuantity:     wp.StockQuantity,
		StockStatus:       wp.StockStatus,
		Backorders:        wp.Backorders,
		LowStockAmount:    wp.LowStockAmount,
		SoldIndividually:  wp.SoldIndividually,
		Weight:            wp.Weight,
		Length:            wp.Dimensions.Length,
		Width:             wp.Dimensions.Width,
		Height:            wp.Dimensions.Height,
	}
	if p.Status == "" {
		p.Status = models.StatusPublish
	}
	if p.CatalogVisibility == "" {
		p.CatalogVisibility = "visible"
	}
	if p.StockStatus == "" {
		p.StockStatus = models.StockInStock
	}
	if p.Backorders == "" {
		p.Backorders = "no"
	}
	// Variations report "parent" when the parent manages their stock.
	p.ManageStock = bytes.Equal(bytes.TrimSpace(wp.ManageStock), []byte("true"))

	var err error
	if p.Price, err = price(wp.Price); err != nil {
		return nil, err
	}
	if p.RegularPrice, err = price(wp.RegularPrice); err != nil {
		return nil, err
	}
	if p.SalePrice, err = price(wp.SalePrice); err != nil {
		return nil, err
	}
	if wp.TotalSales != "" {
		sales, err := wp.TotalSales.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid total sales %q: %w", wp.TotalSales, err)
		}
		p.TotalSales = int(sales)
	}

	if created := parseDate(wp.DateCreatedGMT); created != nil {
		p.CreatedAt = *created
	}
	if modified := parseDate(wp.DateModifiedGMT); modified != nil {
		p.UpdatedAt = *modified
	}
	p.DateOnSaleFrom = parseDate(wp.DateOnSaleFromGMT)
	p.DateOnSaleTo = parseDate(wp.DateOnSaleToGMT)

	for _, m := range wp.MetaData {
		value := m.Value
		if len(value) == 0 {
			value = []byte("null")
		}
		p.Meta = append(p.Meta, models.ProductMeta{Key: m.Key, Value: datatypes.JSON(value)})
	}
	return p, nil
}

// TransformReview converts an approved WooCommerce review.
func (t *Transformer) TransformReview(wr *Review) *models.Review {
	r := &models.Review{
		ID:            wr.ID,
		ProductID:     wr.ProductID,
		Reviewer:      wr.Reviewer,
		ReviewerEmail: wr.ReviewerEmail,
		Content:       wr.Review,
		Rating:        wr.Rating,
		Verified:      wr.Verified,
		Status:        wr.Status,
	}
	if created := parseDate(wr.DateCreatedGMT); created != nil {
		r.CreatedAt = *created
	}
	return r
}

func image(img Image) models.Image {
	return models.Image{
		ID:    img.ID,
		Title: img.Name,
		Alt:   img.Alt,
		URL:   img.Src,
	}
}

func links(kind string, ids []uint) []models.ProductLink {
	out := make([]models.ProductLink, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.ProductLink{LinkedID: id, Kind: kind, Position: i})
	}
	return out
}

func price(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
