package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Product{},
		&ProductAttribute{},
		&VariationAttribute{},
		&GalleryImage{},
		&ProductLink{},
		&ProductMeta{},
		&Image{},
		&Term{},
		&TermRelationship{},
		&AttributeTaxonomy{},
		&Review{},
	}
}
