package catalog

import (
	"encoding/json"

	"catalogapi/internal/pricing"
)

type Dates struct {
	Created     *string `json:"created"`
	CreatedGMT  *string `json:"created_gmt"`
	Modified    *string `json:"modified"`
	ModifiedGMT *string `json:"modified_gmt"`
}

type DateOnSale struct {
	From    *string `json:"from"`
	FromGMT *string `json:"from_gmt"`
	To      *string `json:"to"`
	ToGMT   *string `json:"to_gmt"`
}

type Prices struct {
	Price        string           `json:"price"`
	RegularPrice string           `json:"regular_price"`
	SalePrice    string           `json:"sale_price"`
	PriceRange   pricing.Range    `json:"price_range"`
	OnSale       bool             `json:"on_sale"`
	DateOnSale   DateOnSale       `json:"date_on_sale"`
	Currency     pricing.Currency `json:"currency"`
}

type HiddenConditions struct {
	Virtual          bool `json:"virtual"`
	Downloadable     bool `json:"downloadable"`
	ManageStock      bool `json:"manage_stock"`
	SoldIndividually bool `json:"sold_individually"`
	ReviewsAllowed   bool `json:"reviews_allowed"`
	ShippingRequired bool `json:"shipping_required"`
}

type VariationHiddenConditions struct {
	Virtual          bool `json:"virtual"`
	Downloadable     bool `json:"downloadable"`
	ManageStock      bool `json:"manage_stock"`
	SoldIndividually bool `json:"sold_individually"`
	ShippingRequired bool `json:"shipping_required"`
}

type Image struct {
	ID       uint   `json:"id"`
	Src      Pairs  `json:"src"`
	Name     string `json:"name"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
	Featured bool   `json:"featured"`
}

// TermSummary is the compact form of a category or tag.
type TermSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	RestURL string `json:"rest_url"`
}

// Options maps option values to display names in order.
type Options = Pairs

type ProductAttribute struct {
	Key                string  `json:"-"`
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Position           int     `json:"position"`
	IsAttributeVisible bool    `json:"is_attribute_visible"`
	UsedForVariation   bool    `json:"used_for_variation"`
	Options            Options `json:"options"`
}

type VariationAttribute struct {
	Key    string  `json:"-"`
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Option Options `json:"option"`
}

// ProductAttributes renders as an object keyed by "attribute_<name>".
type ProductAttributes []ProductAttribute

func (a ProductAttributes) MarshalJSON() ([]byte, error) {
	members := make([]member, len(a))
	for i, attr := range a {
		members[i] = member{attr.Key, attr}
	}
	return marshalObject(members)
}

type VariationAttributes []VariationAttribute

func (a VariationAttributes) MarshalJSON() ([]byte, error) {
	members := make([]member, len(a))
	for i, attr := range a {
		members[i] = member{attr.Key, attr}
	}
	return marshalObject(members)
}

type DefaultAttribute struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type VariationPrices struct {
	Price        string           `json:"price"`
	RegularPrice string           `json:"regular_price"`
	SalePrice    string           `json:"sale_price"`
	OnSale       bool             `json:"on_sale"`
	DateOnSale   DateOnSale       `json:"date_on_sale"`
	Currency     pricing.Currency `json:"currency"`
}

type PurchaseQuantity struct {
	MinPurchase int `json:"min_purchase"`
	MaxPurchase int `json:"max_purchase"`
}

type VariationSummaryCart struct {
	IsPurchasable    bool             `json:"is_purchasable"`
	PurchaseQuantity PurchaseQuantity `json:"purchase_quantity"`
	RestURL          string           `json:"rest_url"`
}

// VariationSummary is one entry of a variable product's variation list.
type VariationSummary struct {
	ID            uint                 `json:"id"`
	SKU           string               `json:"sku"`
	Description   string               `json:"description"`
	Attributes    Pairs                `json:"attributes"`
	FeaturedImage Pairs                `json:"featured_image"`
	Prices        VariationPrices      `json:"prices"`
	AddToCart     VariationSummaryCart `json:"add_to_cart"`
}

type Stock struct {
	IsInStock         bool   `json:"is_in_stock"`
	StockQuantity     *int   `json:"stock_quantity"`
	StockStatus       string `json:"stock_status"`
	Backorders        string `json:"backorders"`
	BackordersAllowed bool   `json:"backorders_allowed"`
	Backordered       bool   `json:"backordered"`
	LowStockAmount    *int   `json:"low_stock_amount"`
}

type Weight struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
	Unit   string `json:"unit"`
}

type Review struct {
	ID             uint    `json:"id"`
	DateCreated    *string `json:"date_created"`
	DateCreatedGMT *string `json:"date_created_gmt"`
	ProductID      uint    `json:"product_id"`
	Reviewer       string  `json:"reviewer"`
	Review         string  `json:"review"`
	Rating         int     `json:"rating"`
	Verified       bool    `json:"verified"`
}

type ConnectedCart struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	RestURL     string `json:"rest_url"`
}

// ConnectedProduct is the summary of a related, upsell or cross-sell product.
type ConnectedProduct struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Permalink string         `json:"permalink"`
	Price     pricing.Amount `json:"price"`
	AddToCart ConnectedCart  `json:"add_to_cart"`
	RestURL   string         `json:"rest_url"`
}

type AddToCart struct {
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	HasOptions       bool              `json:"has_options"`
	IsPurchasable    bool              `json:"is_purchasable"`
	PurchaseQuantity *PurchaseQuantity `json:"purchase_quantity,omitempty"`
	RestURL          string            `json:"rest_url"`
}

type VariationAddToCart struct {
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	IsPurchasable    bool              `json:"is_purchasable"`
	PurchaseQuantity *PurchaseQuantity `json:"purchase_quantity,omitempty"`
	RestURL          string            `json:"rest_url"`
}

type MetaEntry struct {
	ID    uint            `json:"id"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// MetaData renders public meta entries keyed by meta key.
type MetaData []MetaEntry

func (m MetaData) MarshalJSON() ([]byte, error) {
	members := make([]member, len(m))
	for i, entry := range m {
		members[i] = member{entry.Key, entry}
	}
	return marshalObject(members)
}

// ProductView is the projected form of a product.
type ProductView struct {
	ID                uint
	ParentID          uint
	Name              string
	Type              string
	Slug              string
	Permalink         string
	SKU               string
	Description       string
	ShortDescription  string
	Dates             Dates
	Featured          bool
	Prices            Prices
	HiddenConditions  HiddenConditions
	AverageRating     string
	ReviewCount       int
	RatingCount       int
	RatedOutOf        string
	Images            []Image
	Categories        []TermSummary
	Tags              []TermSummary
	Attributes        ProductAttributes
	DefaultAttributes []DefaultAttribute
	Variations        []VariationSummary
	GroupedProducts   []uint
	Stock             Stock
	Weight            Weight
	Dimensions        Dimensions
	Reviews           []Review
	Related           []ConnectedProduct
	Upsells           []ConnectedProduct
	CrossSells        []ConnectedProduct
	TotalSales        int
	ExternalURL       string
	ButtonText        string
	AddToCart         AddToCart
	MetaData          MetaData
	Links             Links

	fields FieldSet
}

func (v *ProductView) values() []member {
	return []member{
		{"id", v.ID},
		{"parent_id", v.ParentID},
		{"name", v.Name},
		{"type", v.Type},
		{"slug", v.Slug},
		{"permalink", v.Permalink},
		{"sku", v.SKU},
		{"description", v.Description},
		{"short_description", v.ShortDescription},
		{"dates", v.Dates},
		{"featured", v.Featured},
		{"prices", v.Prices},
		{"hidden_conditions", v.HiddenConditions},
		{"average_rating", v.AverageRating},
		{"review_count", v.ReviewCount},
		{"rating_count", v.RatingCount},
		{"rated_out_of", v.RatedOutOf},
		{"images", nonNil(v.Images)},
		{"categories", nonNil(v.Categories)},
		{"tags", nonNil(v.Tags)},
		{"attributes", v.Attributes},
		{"default_attributes", nonNil(v.DefaultAttributes)},
		{"variations", nonNil(v.Variations)},
		{"grouped_products", nonNil(v.GroupedProducts)},
		{"stock", v.Stock},
		{"weight", v.Weight},
		{"dimensions", v.Dimensions},
		{"reviews", nonNil(v.Reviews)},
		{"related", nonNil(v.Related)},
		{"upsells", nonNil(v.Upsells)},
		{"cross_sells", nonNil(v.CrossSells)},
		{"total_sales", v.TotalSales},
		{"external_url", v.ExternalURL},
		{"button_text", v.ButtonText},
		{"add_to_cart", v.AddToCart},
		{"meta_data", v.MetaData},
	}
}

// Keys lists the top level keys the view renders.
func (v *ProductView) Keys() []string {
	return selectedKeys(v.values(), v.fields, v.Links)
}

func (v *ProductView) MarshalJSON() ([]byte, error) {
	return marshalSelected(v.values(), v.fields, v.Links)
}

// View is a projected product or variation.
type View interface {
	json.Marshaler
	Keys() []string
}

// VariationView is the projected form of a variation. It has no fields that
// only make sense on a parent product.
type VariationView struct {
	ID               uint
	ParentID         uint
	Name             string
	Slug             string
	Permalink        string
	SKU              string
	Description      string
	Dates            Dates
	Featured         bool
	Prices           Prices
	HiddenConditions VariationHiddenConditions
	Images           []Image
	Categories       []TermSummary
	Tags             []TermSummary
	Attributes       VariationAttributes
	Stock            Stock
	Weight           Weight
	Dimensions       Dimensions
	TotalSales       int
	AddToCart        VariationAddToCart
	MetaData         MetaData
	Links            Links

	fields FieldSet
}

func (v *VariationView) values() []member {
	return []member{
		{"id", v.ID},
		{"parent_id", v.ParentID},
		{"name", v.Name},
		{"slug", v.Slug},
		{"permalink", v.Permalink},
		{"sku", v.SKU},
		{"description", v.Description},
		{"dates", v.Dates},
		{"featured", v.Featured},
		{"prices", v.Prices},
		{"hidden_conditions", v.HiddenConditions},
		{"images", nonNil(v.Images)},
		{"categories", nonNil(v.Categories)},
		{"tags", nonNil(v.Tags)},
		{"attributes", v.Attributes},
		{"stock", v.Stock},
		{"weight", v.Weight},
		{"dimensions", v.Dimensions},
		{"total_sales", v.TotalSales},
		{"add_to_cart", v.AddToCart},
		{"meta_data", v.MetaData},
	}
}

func (v *VariationView) Keys() []string {
	return selectedKeys(v.values(), v.fields, v.Links)
}

func (v *VariationView) MarshalJSON() ([]byte, error) {
	return marshalSelected(v.values(), v.fields, v.Links)
}

func selectedKeys(values []member, fields FieldSet, links Links) []string {
	var keys []string
	for _, m := range values {
		if fields.Includes(m.key) {
			keys = append(keys, m.key)
		}
	}
	if len(links) > 0 && fields.Includes(linksField) {
		keys = append(keys, linksField)
	}
	return keys
}

func marshalSelected(values []member, fields FieldSet, links Links) ([]byte, error) {
	selected := make([]member, 0, len(values)+1)
	for _, m := range values {
		if fields.Includes(m.key) {
			selected = append(selected, m)
		}
	}
	if len(links) > 0 && fields.Includes(linksField) {
		selected = append(selected, member{linksField, links})
	}
	return marshalObject(selected)
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
