package models

// Taxonomy names.
const (
	TaxonomyCategory   = "product_cat"
	TaxonomyTag        = "product_tag"
	TaxonomyType       = "product_type"
	TaxonomyVisibility = "product_visibility"

	// AttributeTaxonomyPrefix prefixes the taxonomy name of every global attribute.
	AttributeTaxonomyPrefix = "pa_"
)

// Visibility marker terms.
const (
	VisibilityFeatured           = "featured"
	VisibilityOutOfStock         = "outofstock"
	VisibilityExcludeFromCatalog = "exclude-from-catalog"
	VisibilityExcludeFromSearch  = "exclude-from-search"
)

type Term struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Taxonomy    string `json:"taxonomy" gorm:"size:64;index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:200;index"`
	ParentID    uint   `json:"parent" gorm:"index"`
	Description string `json:"description" gorm:"type:text"`
	MenuOrder   int    `json:"menu_order"`
	Count       int    `json:"count"`
	ImageID     uint   `json:"image_id"`
}

type TermRelationship struct {
	ProductID uint `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	TermID    uint `json:"term_id" gorm:"primaryKey;autoIncrement:false;index"`
}

type AttributeTaxonomy struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:28;uniqueIndex;not null"`
	Label       string `json:"label"`
	Type        string `json:"type" gorm:"size:20;default:select"`
	OrderBy     string `json:"order_by" gorm:"size:20;default:menu_order"`
	HasArchives bool   `json:"has_archives"`
}

func (AttributeTaxonomy) TableName() string {
	return "attribute_taxonomies"
}

// TaxonomyName returns the term taxonomy backing the attribute, e.g. "pa_color".
func (a *AttributeTaxonomy) TaxonomyName() string {
	return AttributeTaxonomyPrefix + a.Name
}
