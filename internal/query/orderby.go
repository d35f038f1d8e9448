package query

import "strings"

type orderRule func(a *Args)

func descThenTitle(metaKey, field string) orderRule {
	return func(a *Args) {
		a.MetaKey = metaKey
		a.OrderBy = []OrderClause{{Field: field, Order: "DESC"}, {Field: OrderByTitle, Order: "ASC"}}
	}
}

func byMeta(metaKey, order string) orderRule {
	return func(a *Args) {
		if order != "" {
			a.Order = order
		}
		a.MetaKey = metaKey
		a.OrderBy = []OrderClause{{Field: OrderByMetaValueNum, Order: a.Order}}
	}
}

var orderRules = map[string]orderRule{
	"id": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByID, Order: a.Order}}
	},
	"menu_order": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByMenuOrder, Order: a.Order}, {Field: OrderByTitle, Order: a.Order}}
	},
	"include": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByInclude, Order: a.Order}}
	},
	"name": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByName, Order: a.Order}}
	},
	"slug": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByName, Order: a.Order}}
	},
	"alphabetical": func(a *Args) {
		a.Order = "ASC"
		a.MetaKey = ""
		a.OrderBy = []OrderClause{{Field: OrderByTitle, Order: a.Order}}
	},
	"reverse_alpha": func(a *Args) {
		a.Order = "DESC"
		a.MetaKey = ""
		a.OrderBy = []OrderClause{{Field: OrderByTitle, Order: a.Order}}
	},
	"title": func(a *Args) {
		if a.Order != "DESC" {
			a.Order = "ASC"
		}
		a.OrderBy = []OrderClause{{Field: OrderByTitle, Order: a.Order}}
	},
	"relevance": func(a *Args) {
		a.Order = "DESC"
		a.OrderBy = []OrderClause{{Field: OrderByRelevance, Order: a.Order}}
	},
	"rand": func(a *Args) {
		a.OrderBy = []OrderClause{{Field: OrderByRand, Order: a.Order}}
	},
	"date": func(a *Args) {
		if a.Order != "ASC" {
			a.Order = "DESC"
		}
		a.OrderBy = []OrderClause{{Field: OrderByDate, Order: a.Order}, {Field: OrderByID, Order: a.Order}}
	},
	"by_stock":       descThenTitle(MetaStock, OrderByMetaValueNum),
	"review_count":   descThenTitle(MetaReviewCount, OrderByMetaValueNum),
	"on_sale_first":  descThenTitle(MetaSalePrice, OrderByMetaValueNum),
	"featured_first": descThenTitle(MetaFeatured, OrderByMetaValue),
	"price_asc":      byMeta(MetaPrice, "ASC"),
	"price_desc":     byMeta(MetaPrice, "DESC"),
	"sales":          byMeta(MetaTotalSales, ""),
	"popularity":     byMeta(MetaTotalSales, ""),
	"rating":         byMeta(MetaAverageRating, "DESC"),
}

// applyOrder resolves key, then the store default, then "date".
func applyOrder(a *Args, key, storeDefault string) {
	for _, candidate := range []string{key, storeDefault, "date"} {
		if rule, ok := orderRules[strings.ToLower(strings.TrimSpace(candidate))]; ok {
			rule(a)
			return
		}
	}
}
