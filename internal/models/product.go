package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product types.
const (
	TypeSimple                = "simple"
	TypeVariable              = "variable"
	TypeGrouped               = "grouped"
	TypeExternal              = "external"
	TypeVariation             = "variation"
	TypeSubscription          = "subscription"
	TypeVariableSubscription  = "variable-subscription"
	TypeSubscriptionVariation = "subscription_variation"
)

// Stock statuses.
const (
	StockInStock     = "instock"
	StockOutOfStock  = "outofstock"
	StockOnBackorder = "onbackorder"
)

// Post statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
)

// VariationTypes lists the product types stored as children of a variable product.
var VariationTypes = []string{TypeVariation, TypeSubscriptionVariation}

type Product struct {
	ID                uint                `json:"id" gorm:"primaryKey"`
	ParentID          uint                `json:"parent_id" gorm:"index"`
	Type              string              `json:"type" gorm:"size:32;index;not null;default:simple"`
	Status            string              `json:"status" gorm:"size:20;index;not null;default:publish"`
	Name              string              `json:"name" gorm:"not null"`
	Slug              string              `json:"slug" gorm:"size:200;index"`
	SKU               string              `json:"sku" gorm:"size:100;index"`
	Description       string              `json:"description" gorm:"type:text"`
	ShortDescription  string              `json:"short_description" gorm:"type:text"`
	MenuOrder         int                 `json:"menu_order"`
	Featured          bool                `json:"featured"`
	CatalogVisibility string              `json:"catalog_visibility" gorm:"size:20;default:visible"`
	RegularPrice      decimal.NullDecimal `json:"regular_price" gorm:"type:decimal(19,4)"`
	SalePrice         decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(19,4)"`
	Price             decimal.NullDecimal `json:"price" gorm:"type:decimal(19,4);index"`
	DateOnSaleFrom    *time.Time          `json:"date_on_sale_from"`
	DateOnSaleTo      *time.Time          `json:"date_on_sale_to"`
	TaxStatus         string              `json:"tax_status" gorm:"size:20;default:taxable"`
	TaxClass          string              `json:"tax_class" gorm:"size:100"`
	Virtual           bool                `json:"virtual"`
	Downloadable      bool                `json:"downloadable"`
	ManageStock       bool                `json:"manage_stock"`
	StockQuantity     *int                `json:"stock_quantity"`
	StockStatus       string              `json:"stock_status" gorm:"size:20;index;default:instock"`
	Backorders        string              `json:"backorders" gorm:"size:10;default:no"`
	LowStockAmount    *int                `json:"low_stock_amount"`
	SoldIndividually  bool                `json:"sold_individually"`
	Weight            string              `json:"weight" gorm:"size:20"`
	Length            string              `json:"length" gorm:"size:20"`
	Width             string              `json:"width" gorm:"size:20"`
	Height            string              `json:"height" gorm:"size:20"`
	ReviewsAllowed    bool                `json:"reviews_allowed"`
	AverageRating     decimal.Decimal     `json:"average_rating" gorm:"type:decimal(3,2)"`
	ReviewCount       int                 `json:"review_count"`
	RatingCount       int                 `json:"rating_count"`
	TotalSales        int                 `json:"total_sales"`
	ProductURL        string              `json:"product_url"`
	ButtonText        string              `json:"button_text" gorm:"size:100"`
	ImageID           uint                `json:"image_id"`
	DefaultAttributes datatypes.JSONMap   `json:"default_attributes"`
	CreatedAt         time.Time           `json:"date_created"`
	UpdatedAt         time.Time           `json:"date_modified"`

	Attributes          []ProductAttribute   `json:"attributes,omitempty" gorm:"foreignKey:ProductID"`
	VariationAttributes []VariationAttribute `json:"variation_attributes,omitempty" gorm:"foreignKey:VariationID"`
	Gallery             []GalleryImage       `json:"gallery,omitempty" gorm:"foreignKey:ProductID"`
	Links               []ProductLink        `json:"links,omitempty" gorm:"foreignKey:ProductID"`
	Meta                []ProductMeta        `json:"meta,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return nil
}

// IsType reports whether the product is one of the given types.
func (p *Product) IsType(types ...string) bool {
	for _, t := range types {
		if p.Type == t {
			return true
		}
	}
	return false
}

func (p *Product) IsVariation() bool {
	return p.IsType(VariationTypes...)
}

func (p *Product) IsVariable() bool {
	return p.IsType(TypeVariable, TypeVariableSubscription)
}

// Exists mirrors a persisted, non-trashed product.
func (p *Product) Exists() bool {
	return p != nil && p.ID != 0 && p.Status != "trash"
}

func (p *Product) IsPublished() bool {
	return p.Status == StatusPublish
}

func (p *Product) IsInStock() bool {
	return p.StockStatus != StockOutOfStock
}

func (p *Product) BackordersAllowed() bool {
	return p.Backorders == "yes" || p.Backorders == "notify"
}

func (p *Product) IsOnBackorder() bool {
	return p.StockStatus == StockOnBackorder
}

func (p *Product) NeedsShipping() bool {
	return !p.Virtual
}

func (p *Product) HasPrice() bool {
	return p.Price.Valid
}

// IsOnSale reports whether a sale price below the regular price is active at now.
func (p *Product) IsOnSale(now time.Time) bool {
	if !p.SalePrice.Valid || !p.RegularPrice.Valid {
		return false
	}
	if !p.SalePrice.Decimal.LessThan(p.RegularPrice.Decimal) {
		return false
	}
	if p.DateOnSaleFrom != nil && p.DateOnSaleFrom.After(now) {
		return false
	}
	if p.DateOnSaleTo != nil && p.DateOnSaleTo.Before(now) {
		return false
	}
	return true
}

// LinkedIDs returns the ids linked to the product with the given kind, ordered by position.
func (p *Product) LinkedIDs(kind string) []uint {
	var ids []uint
	for _, link := range sortedLinks(p.Links) {
		if link.Kind == kind {
			ids = append(ids, link.LinkedID)
		}
	}
	return ids
}

// GalleryImageIDs returns the gallery attachment ids ordered by position.
func (p *Product) GalleryImageIDs() []uint {
	ids := make([]uint, 0, len(p.Gallery))
	for _, g := range sortedGallery(p.Gallery) {
		ids = append(ids, g.ImageID)
	}
	return ids
}
