package query

import (
	"fmt"
	"strconv"
	"strings"

	"catalogapi/internal/models"

	"github.com/shopspring/decimal"
)

const maxPerPage = 100

// Store carries the catalog settings and lookups the translation depends on.
type Store struct {
	DefaultOrderBy           string
	DefaultOrder             string
	DefaultPerPage           int
	DefaultCatalogVisibility string
	IncludeVariations        bool

	// AttributeTaxonomies lists the registered attribute taxonomy names ("pa_color").
	AttributeTaxonomies []string

	// OnSaleIDs returns the ids of products currently on sale. Only called
	// when the request filters on sale state.
	OnSaleIDs func() ([]uint, error)
}

// Policies are extension points applied to every translation.
type Policies struct {
	// Adjust may rewrite the translated args before they reach the repository.
	Adjust func(Args, Params) Args
}

var operatorMapping = map[string]string{
	"in":     OperatorIn,
	"not_in": OperatorNotIn,
	"and":    OperatorAnd,
}

var catalogVisibilityOptions = map[string]bool{
	"visible": true,
	"catalog": true,
	"search":  true,
	"hidden":  true,
}

// Translate maps request parameters to repository query args.
func Translate(p Params, store Store, policies Policies) (Args, error) {
	args := Args{
		PostType:    []string{PostTypeProduct},
		PostStatus:  models.StatusPublish,
		Offset:      p.Offset,
		Page:        p.Page,
		PerPage:     p.PerPage,
		Order:       strings.ToUpper(strings.TrimSpace(p.Order)),
		Include:     p.Include,
		Exclude:     p.Exclude,
		ParentIn:    p.Parent,
		ParentNotIn: p.ParentExclude,
		Search:      strings.TrimSpace(p.Search),
		Slug:        strings.TrimSpace(p.Slug),
	}

	if args.Page < 1 {
		args.Page = 1
	}
	if args.PerPage < 1 {
		args.PerPage = store.DefaultPerPage
	}
	if args.PerPage < 1 {
		args.PerPage = 10
	}
	if args.PerPage > maxPerPage {
		args.PerPage = maxPerPage
	}
	if args.Offset < 0 {
		args.Offset = 0
	}
	if args.Order != "ASC" && args.Order != "DESC" {
		args.Order = strings.ToUpper(store.DefaultOrder)
		if args.Order != "ASC" {
			args.Order = "DESC"
		}
	}

	includeVariations := store.IncludeVariations
	if p.IncludeVariations != nil {
		includeVariations = *p.IncludeVariations
	}

	// A SKU may belong to a variation, so searching by SKU covers every product post type.
	if p.SKU != "" || includeVariations {
		args.PostType = []string{PostTypeProduct, PostTypeVariation}
	}

	applyOrder(&args, p.OrderBy, store.DefaultOrderBy)

	var taxQuery []TaxClause

	if p.Type != "" {
		if p.Type == models.TypeVariation {
			args.PostType = []string{PostTypeVariation}
		} else {
			taxQuery = append(taxQuery, TaxClause{
				Taxonomy: models.TaxonomyType,
				Field:    "slug",
				Terms:    []string{p.Type},
				Operator: OperatorIn,
			})
		}
	} else if includeVariations {
		// Variations stand in for their parents.
		taxQuery = append(taxQuery, TaxClause{
			Taxonomy: models.TaxonomyType,
			Field:    "slug",
			Terms:    []string{models.TypeVariable, models.TypeVariableSubscription},
			Operator: OperatorNotIn,
		})
	}

	if p.Before != nil || p.After != nil {
		args.DateQuery = &DateQuery{Before: p.Before, After: p.After}
	}

	taxonomies := []struct {
		taxonomy string
		value    string
		operator string
	}{
		{models.TaxonomyCategory, p.Category, p.CategoryOperator},
		{models.TaxonomyTag, p.Tag, p.TagOperator},
	}
	for _, tx := range taxonomies {
		terms := splitList(tx.value)
		if len(terms) == 0 {
			continue
		}
		field := "slug"
		if allNumeric(terms) {
			field = "term_id"
		}
		taxQuery = append(taxQuery, TaxClause{
			Taxonomy: tx.taxonomy,
			Field:    field,
			Terms:    terms,
			Operator: mapOperator(tx.operator),
		})
	}

	if attributeQuery := attributeClauses(p.Attributes, store.AttributeTaxonomies); len(attributeQuery) > 1 {
		taxQuery = append(taxQuery, TaxClause{
			Relation: mapOperator(p.AttributeRelation),
			Clauses:  attributeQuery,
		})
	} else {
		taxQuery = append(taxQuery, attributeQuery...)
	}

	args.TaxQuery = taxQuery

	if p.HideFree {
		args.MetaQuery = append(args.MetaQuery, MetaClause{
			Key:     MetaPrice,
			Value:   []string{"0"},
			Compare: ">",
			Type:    "DECIMAL",
		})
	}

	if p.Featured != nil {
		operator := OperatorNotIn
		if *p.Featured {
			operator = OperatorIn
		}
		args.TaxQuery = append(args.TaxQuery, TaxClause{
			Taxonomy: models.TaxonomyVisibility,
			Field:    "name",
			Terms:    []string{models.VisibilityFeatured},
			Operator: operator,
		})
	}

	if p.SKU != "" {
		skus := strings.Split(p.SKU, ",")
		// The raw string is kept as a candidate too, since a SKU may itself contain commas.
		if len(skus) > 1 {
			skus = append(skus, p.SKU)
		}
		args.MetaQuery = append(args.MetaQuery, MetaClause{
			Key:     MetaSKU,
			Value:   skus,
			Compare: "IN",
		})
	}

	priceClause, err := priceRange(p.MinPrice, p.MaxPrice)
	if err != nil {
		return Args{}, err
	}
	if priceClause != nil {
		args.MetaQuery = append(args.MetaQuery, *priceClause)
	}

	if p.StockStatus != nil {
		status := models.StockOutOfStock
		if *p.StockStatus {
			status = models.StockInStock
		}
		args.MetaQuery = append(args.MetaQuery, MetaClause{
			Key:     MetaStockStatus,
			Value:   []string{status},
			Compare: "=",
		})
	}

	if p.OnSale != nil {
		if store.OnSaleIDs == nil {
			return Args{}, fmt.Errorf("on-sale lookup is not configured")
		}
		onSale, err := store.OnSaleIDs()
		if err != nil {
			return Args{}, fmt.Errorf("failed to load on-sale products: %w", err)
		}
		if *p.OnSale {
			if len(args.Include) > 0 {
				onSale = intersect(args.Include, onSale)
			}
			// ID 0 never matches, so an empty sale set filters everything out.
			if len(onSale) == 0 {
				onSale = []uint{0}
			}
			args.Include = onSale
		} else {
			if len(onSale) == 0 {
				onSale = []uint{0}
			}
			args.Exclude = append(append([]uint(nil), args.Exclude...), onSale...)
		}
	}

	visibility := strings.TrimSpace(p.CatalogVisibility)
	if visibility == "" {
		visibility = store.DefaultCatalogVisibility
	}
	if catalogVisibilityOptions[visibility] {
		var terms []string
		if visibility != "search" {
			terms = append(terms, models.VisibilityExcludeFromCatalog)
		}
		if visibility != "catalog" {
			terms = append(terms, models.VisibilityExcludeFromSearch)
		}
		operator := OperatorNotIn
		if visibility == "hidden" {
			operator = OperatorAnd
		}
		args.TaxQuery = append(args.TaxQuery, TaxClause{
			Taxonomy: models.TaxonomyVisibility,
			Field:    "name",
			Terms:    terms,
			Operator: operator,
		})
	}

	if len(p.Rating) > 0 {
		terms := make([]string, 0, len(p.Rating))
		for _, rating := range p.Rating {
			terms = append(terms, "rated-"+strconv.Itoa(rating))
		}
		args.TaxQuery = append(args.TaxQuery, TaxClause{
			Taxonomy: models.TaxonomyVisibility,
			Field:    "name",
			Terms:    terms,
			Operator: OperatorIn,
		})
	}

	if policies.Adjust != nil {
		args = policies.Adjust(args, p)
	}

	return args, nil
}

func attributeClauses(filters []AttributeFilter, known []string) []TaxClause {
	registered := make(map[string]bool, len(known))
	for _, name := range known {
		registered[name] = true
	}

	var clauses []TaxClause
	for _, f := range filters {
		if len(f.TermID) == 0 && len(f.Slug) == 0 {
			continue
		}
		if !registered[f.Attribute] {
			continue
		}
		clause := TaxClause{
			Taxonomy: f.Attribute,
			Field:    "slug",
			Terms:    f.Slug,
			Operator: mapOperator(f.Operator),
		}
		if len(f.TermID) > 0 {
			clause.Field = "term_id"
			clause.Terms = f.TermID
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func priceRange(minRaw, maxRaw string) (*MetaClause, error) {
	minRaw, maxRaw = strings.TrimSpace(minRaw), strings.TrimSpace(maxRaw)
	if minRaw == "" && maxRaw == "" {
		return nil, nil
	}

	parse := func(param, raw string) (decimal.Decimal, error) {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, &ParamError{Param: param, Message: fmt.Sprintf("%q is not a number", raw)}
		}
		return v, nil
	}

	clause := &MetaClause{Key: MetaPrice, Type: "DECIMAL"}
	switch {
	case minRaw != "" && maxRaw != "":
		lo, err := parse("min_price", minRaw)
		if err != nil {
			return nil, err
		}
		hi, err := parse("max_price", maxRaw)
		if err != nil {
			return nil, err
		}
		clause.Compare = "BETWEEN"
		clause.Value = []string{lo.String(), hi.String()}
	case minRaw != "":
		lo, err := parse("min_price", minRaw)
		if err != nil {
			return nil, err
		}
		clause.Compare = ">="
		clause.Value = []string{lo.String()}
	default:
		hi, err := parse("max_price", maxRaw)
		if err != nil {
			return nil, err
		}
		clause.Compare = "<="
		clause.Value = []string{hi.String()}
	}
	return clause, nil
}

func mapOperator(op string) string {
	if mapped, ok := operatorMapping[strings.ToLower(strings.TrimSpace(op))]; ok {
		return mapped
	}
	return OperatorIn
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func allNumeric(items []string) bool {
	for _, item := range items {
		if _, err := strconv.ParseUint(item, 10, 64); err != nil {
			return false
		}
	}
	return true
}

func intersect(a, b []uint) []uint {
	set := make(map[uint]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	var out []uint
	for _, id := range a {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
