package woocommerce

import (
	"encoding/json"
)

// Product is a product as returned by the WooCommerce REST API (wc/v3).
// Variations fetched from /products/{id}/variations decode into the same type.
type Product struct {
	ID                uint               `json:"id"`
	ParentID          uint               `json:"parent_id"`
	Name              string             `json:"name"`
	Slug              string             `json:"slug"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	Featured          bool               `json:"featured"`
	CatalogVisibility string             `json:"catalog_visibility"`
	Description       string             `json:"description"`
	ShortDescription  string             `json:"short_description"`
	SKU               string             `json:"sku"`
	Price             string             `json:"price"`
	RegularPrice      string             `json:"regular_price"`
	SalePrice         string             `json:"sale_price"`
	DateCreatedGMT    string             `json:"date_created_gmt"`
	DateModifiedGMT   string             `json:"date_modified_gmt"`
	DateOnSaleFromGMT string             `json:"date_on_sale_from_gmt"`
	DateOnSaleToGMT   string             `json:"date_on_sale_to_gmt"`
	TotalSales        json.Number        `json:"total_sales"`
	Virtual           bool               `json:"virtual"`
	Downloadable      bool               `json:"downloadable"`
	ExternalURL       string             `json:"external_url"`
	ButtonText        string             `json:"button_text"`
	TaxStatus         string             `json:"tax_status"`
	TaxClass          string             `json:"tax_class"`
	ManageStock       json.RawMessage    `json:"manage_stock"`
	StockQuantity     *int               `json:"stock_quantity"`
	StockStatus       string             `json:"stock_status"`
	Backorders        string             `json:"backorders"`
	LowStockAmount    *int               `json:"low_stock_amount"`
	SoldIndividually  bool               `json:"sold_individually"`
	Weight            string             `json:"weight"`
	Dimensions        Dimensions         `json:"dimensions"`
	ReviewsAllowed    bool               `json:"reviews_allowed"`
	AverageRating     string             `json:"average_rating"`
	RatingCount       int                `json:"rating_count"`
	MenuOrder         int                `json:"menu_order"`
	UpsellIDs         []uint             `json:"upsell_ids"`
	CrossSellIDs      []uint             `json:"cross_sell_ids"`
	GroupedProducts   []uint             `json:"grouped_products"`
	Variations        []uint             `json:"variations"`
	Categories        []Term             `json:"categories"`
	Tags              []Term             `json:"tags"`
	Images            []Image            `json:"images"`
	Image             *Image             `json:"image"`
	Attributes        []Attribute        `json:"attributes"`
	DefaultAttributes []DefaultAttribute `json:"default_attributes"`
	MetaData          []Meta             `json:"meta_data"`
}

type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type Term struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Image struct {
	ID   uint   `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name"`
	Alt  string `json:"alt"`
}

// Attribute is a product attribute. On variations Option holds the selected
// value and Options is empty. ID is zero for custom attributes.
type Attribute struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
	Option    string   `json:"option"`
}

type DefaultAttribute struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type Meta struct {
	ID    uint            `json:"id"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// AttributeTaxonomy is a global attribute from /products/attributes.
type AttributeTaxonomy struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	OrderBy     string `json:"order_by"`
	HasArchives bool   `json:"has_archives"`
}

type Review struct {
	ID             uint   `json:"id"`
	DateCreatedGMT string `json:"date_created_gmt"`
	ProductID      uint   `json:"product_id"`
	Status         string `json:"status"`
	Reviewer       string `json:"reviewer"`
	ReviewerEmail  string `json:"reviewer_email"`
	Review         string `json:"review"`
	Rating         int    `json:"rating"`
	Verified       bool   `json:"verified"`
}
