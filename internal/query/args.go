package query

import "time"

// Post types a query can target.
const (
	PostTypeProduct   = "product"
	PostTypeVariation = "product_variation"
)

// Tax clause operators.
const (
	OperatorIn        = "IN"
	OperatorNotIn     = "NOT IN"
	OperatorAnd       = "AND"
	OperatorExists    = "EXISTS"
	OperatorNotExists = "NOT EXISTS"
)

// Order fields understood by the repository.
const (
	OrderByID           = "ID"
	OrderByTitle        = "title"
	OrderByName         = "name"
	OrderByMenuOrder    = "menu_order"
	OrderByDate         = "date"
	OrderByRand         = "rand"
	OrderByRelevance    = "relevance"
	OrderByInclude      = "post__in"
	OrderByMetaValue    = "meta_value"
	OrderByMetaValueNum = "meta_value_num"
)

// Meta keys the translator filters and sorts on.
const (
	MetaPrice         = "_price"
	MetaRegularPrice  = "_regular_price"
	MetaSalePrice     = "_sale_price"
	MetaSKU           = "_sku"
	MetaStock         = "_stock"
	MetaStockStatus   = "_stock_status"
	MetaFeatured      = "_featured"
	MetaTotalSales    = "total_sales"
	MetaAverageRating = "_wc_average_rating"
	MetaReviewCount   = "_wc_review_count"
)

// Args is the repository-level description of a product query.
type Args struct {
	PostType    []string      `json:"post_type"`
	PostStatus  string        `json:"post_status"`
	Offset      int           `json:"offset,omitempty"`
	Page        int           `json:"paged"`
	PerPage     int           `json:"posts_per_page"`
	Order       string        `json:"order"`
	OrderBy     []OrderClause `json:"orderby"`
	MetaKey     string        `json:"meta_key,omitempty"`
	Include     []uint        `json:"post__in,omitempty"`
	Exclude     []uint        `json:"post__not_in,omitempty"`
	ParentIn    []uint        `json:"post_parent__in,omitempty"`
	ParentNotIn []uint        `json:"post_parent__not_in,omitempty"`
	Search      string        `json:"s,omitempty"`
	Slug        string        `json:"name,omitempty"`
	DateQuery   *DateQuery    `json:"date_query,omitempty"`
	TaxQuery    []TaxClause   `json:"tax_query,omitempty"`
	MetaQuery   []MetaClause  `json:"meta_query,omitempty"`
}

type OrderClause struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// TaxClause is either a term membership test or, when Clauses is set, a group
// combining nested clauses under Relation (IN: any, AND: all, NOT IN: none).
type TaxClause struct {
	Taxonomy string      `json:"taxonomy,omitempty"`
	Field    string      `json:"field,omitempty"`
	Terms    []string    `json:"terms,omitempty"`
	Operator string      `json:"operator,omitempty"`
	Relation string      `json:"relation,omitempty"`
	Clauses  []TaxClause `json:"clauses,omitempty"`
}

func (c TaxClause) IsGroup() bool {
	return len(c.Clauses) > 0
}

type MetaClause struct {
	Key     string   `json:"key"`
	Value   []string `json:"value"`
	Compare string   `json:"compare"`
	Type    string   `json:"type,omitempty"`
}

type DateQuery struct {
	Before *time.Time `json:"before,omitempty"`
	After  *time.Time `json:"after,omitempty"`
}

// HasPostType reports whether the query targets the given post type.
func (a Args) HasPostType(postType string) bool {
	for _, pt := range a.PostType {
		if pt == postType {
			return true
		}
	}
	return false
}
