package models

import (
	"strings"
)

// ProductAttribute is an attribute assigned to a parent product. Taxonomy attributes
// take their options from term relationships, custom ones from the pipe-delimited Value.
type ProductAttribute struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ProductID   uint   `json:"product_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Value       string `json:"value" gorm:"type:text"`
	Position    int    `json:"position"`
	IsVisible   bool   `json:"is_visible"`
	IsVariation bool   `json:"is_variation"`
	IsTaxonomy  bool   `json:"is_taxonomy"`
}

// Options splits a custom attribute value on "|".
func (a *ProductAttribute) Options() []string {
	var options []string
	for _, option := range strings.Split(a.Value, "|") {
		if option = strings.TrimSpace(option); option != "" {
			options = append(options, option)
		}
	}
	return options
}

// VariationAttribute is the value a variation selects for one of its parent's
// variation attributes. Name is "pa_color" for taxonomy attributes or the
// sanitized custom attribute name; an empty Value means "any".
type VariationAttribute struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	VariationID uint   `json:"variation_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Value       string `json:"value"`
}

// IsTaxonomy reports whether the attribute refers to a global attribute taxonomy.
func (a *VariationAttribute) IsTaxonomy() bool {
	return strings.HasPrefix(a.Name, AttributeTaxonomyPrefix)
}
