package repository

import (
	"fmt"
	"strconv"
	"strings"

	"catalogapi/internal/models"
	"catalogapi/internal/query"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// metaColumns maps translator meta keys to product columns.
var metaColumns = map[string]string{
	query.MetaPrice:         "products.price",
	query.MetaRegularPrice:  "products.regular_price",
	query.MetaSalePrice:     "products.sale_price",
	query.MetaSKU:           "products.sku",
	query.MetaStock:         "products.stock_quantity",
	query.MetaStockStatus:   "products.stock_status",
	query.MetaFeatured:      "products.featured",
	query.MetaTotalSales:    "products.total_sales",
	query.MetaAverageRating: "products.average_rating",
	query.MetaReviewCount:   "products.review_count",
}

var metaComparisons = map[string]bool{
	"=": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true,
}

func buildFilter(args query.Args) (func(*gorm.DB) *gorm.DB, error) {
	var conditions []clause.Expr

	add := func(sql string, vars ...interface{}) {
		conditions = append(conditions, clause.Expr{SQL: sql, Vars: vars})
	}

	switch {
	case args.HasPostType(query.PostTypeProduct) && !args.HasPostType(query.PostTypeVariation):
		add("products.type NOT IN ?", models.VariationTypes)
	case args.HasPostType(query.PostTypeVariation) && !args.HasPostType(query.PostTypeProduct):
		add("products.type IN ?", models.VariationTypes)
	}

	if args.PostStatus != "" && args.PostStatus != "any" {
		add("products.status = ?", args.PostStatus)
	}
	if len(args.Include) > 0 {
		add("products.id IN ?", args.Include)
	}
	if len(args.Exclude) > 0 {
		add("products.id NOT IN ?", args.Exclude)
	}
	if len(args.ParentIn) > 0 {
		add("products.parent_id IN ?", args.ParentIn)
	}
	if len(args.ParentNotIn) > 0 {
		add("products.parent_id NOT IN ?", args.ParentNotIn)
	}
	if args.Slug != "" {
		add("products.slug = ?", args.Slug)
	}
	if args.Search != "" {
		like := "%" + strings.ToLower(args.Search) + "%"
		add("(LOWER(products.name) LIKE ? OR LOWER(products.short_description) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.sku) LIKE ?)",
			like, like, like, like)
	}
	if args.DateQuery != nil {
		if args.DateQuery.Before != nil {
			add("products.created_at < ?", *args.DateQuery.Before)
		}
		if args.DateQuery.After != nil {
			add("products.created_at > ?", *args.DateQuery.After)
		}
	}

	for _, mc := range args.MetaQuery {
		expr, err := metaExpr(mc)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, expr)
	}

	return func(db *gorm.DB) *gorm.DB {
		newDB := func() *gorm.DB { return db.Session(&gorm.Session{NewDB: true}) }
		for _, c := range conditions {
			db = db.Where(c.SQL, c.Vars...)
		}
		for _, tc := range args.TaxQuery {
			sql, vars, err := taxExpr(newDB, tc)
			if err != nil {
				db.AddError(err)
				return db
			}
			if sql != "" {
				db = db.Where(sql, vars...)
			}
		}
		return db
	}, nil
}

func metaExpr(mc query.MetaClause) (clause.Expr, error) {
	column, ok := metaColumns[mc.Key]
	if !ok {
		return clause.Expr{}, fmt.Errorf("unsupported meta key %q", mc.Key)
	}

	values := make([]interface{}, 0, len(mc.Value))
	for _, raw := range mc.Value {
		switch strings.ToUpper(mc.Type) {
		case "DECIMAL", "NUMERIC", "SIGNED":
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return clause.Expr{}, fmt.Errorf("meta %s: %q is not numeric: %w", mc.Key, raw, err)
			}
			values = append(values, d)
		default:
			values = append(values, raw)
		}
	}

	compare := strings.ToUpper(strings.TrimSpace(mc.Compare))
	if compare == "" {
		compare = "="
	}
	switch {
	case metaComparisons[compare]:
		if len(values) == 0 {
			return clause.Expr{}, fmt.Errorf("meta %s: %s needs a value", mc.Key, compare)
		}
		return clause.Expr{SQL: column + " " + compare + " ?", Vars: values[:1]}, nil
	case compare == "IN" || compare == "NOT IN":
		if len(values) == 0 {
			values = []interface{}{""}
		}
		return clause.Expr{SQL: column + " " + compare + " ?", Vars: []interface{}{values}}, nil
	case compare == "BETWEEN":
		if len(values) != 2 {
			return clause.Expr{}, fmt.Errorf("meta %s: BETWEEN needs two values", mc.Key)
		}
		return clause.Expr{SQL: column + " BETWEEN ? AND ?", Vars: values}, nil
	}
	return clause.Expr{}, fmt.Errorf("meta %s: unsupported comparison %q", mc.Key, mc.Compare)
}

// taxExpr renders one tax clause as a condition on products.id.
func taxExpr(newDB func() *gorm.DB, tc query.TaxClause) (string, []interface{}, error) {
	if tc.IsGroup() {
		var parts []string
		var vars []interface{}
		for _, child := range tc.Clauses {
			sql, childVars, err := taxExpr(newDB, child)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, "("+sql+")")
			vars = append(vars, childVars...)
		}
		if len(parts) == 0 {
			return "", nil, nil
		}
		switch tc.Relation {
		case query.OperatorAnd:
			return strings.Join(parts, " AND "), vars, nil
		case query.OperatorNotIn:
			return "NOT (" + strings.Join(parts, " OR ") + ")", vars, nil
		default:
			return strings.Join(parts, " OR "), vars, nil
		}
	}

	// Product type is a column rather than a term relationship.
	if tc.Taxonomy == models.TaxonomyType {
		return typeExpr(tc)
	}

	subquery := func(terms []string) (*gorm.DB, error) {
		sub := newDB().
			Table("term_relationships AS tr").
			Select("tr.product_id").
			Joins("JOIN terms t ON t.id = tr.term_id").
			Where("t.taxonomy = ?", tc.Taxonomy)
		if terms == nil {
			return sub, nil
		}
		switch tc.Field {
		case "term_id":
			ids := make([]uint64, 0, len(terms))
			for _, term := range terms {
				id, err := strconv.ParseUint(term, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("taxonomy %s: %q is not a term id", tc.Taxonomy, term)
				}
				ids = append(ids, id)
			}
			return sub.Where("t.id IN ?", ids), nil
		case "name":
			return sub.Where("t.name IN ?", terms), nil
		default:
			return sub.Where("t.slug IN ?", terms), nil
		}
	}

	switch tc.Operator {
	case query.OperatorExists, query.OperatorNotExists:
		sub, err := subquery(nil)
		if err != nil {
			return "", nil, err
		}
		if tc.Operator == query.OperatorNotExists {
			return "products.id NOT IN (?)", []interface{}{sub}, nil
		}
		return "products.id IN (?)", []interface{}{sub}, nil
	}

	if len(tc.Terms) == 0 {
		return "", nil, nil
	}

	switch tc.Operator {
	case query.OperatorAnd:
		var parts []string
		var vars []interface{}
		for _, term := range tc.Terms {
			sub, err := subquery([]string{term})
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, "products.id IN (?)")
			vars = append(vars, sub)
		}
		return strings.Join(parts, " AND "), vars, nil
	case query.OperatorNotIn:
		sub, err := subquery(tc.Terms)
		if err != nil {
			return "", nil, err
		}
		return "products.id NOT IN (?)", []interface{}{sub}, nil
	default:
		sub, err := subquery(tc.Terms)
		if err != nil {
			return "", nil, err
		}
		return "products.id IN (?)", []interface{}{sub}, nil
	}
}

func typeExpr(tc query.TaxClause) (string, []interface{}, error) {
	switch tc.Operator {
	case query.OperatorExists:
		return "", nil, nil
	case query.OperatorNotExists:
		return "1 = 0", nil, nil
	}
	if len(tc.Terms) == 0 {
		return "", nil, nil
	}
	switch tc.Operator {
	case query.OperatorNotIn:
		return "products.type NOT IN ?", []interface{}{tc.Terms}, nil
	case query.OperatorAnd:
		if len(tc.Terms) > 1 {
			return "1 = 0", nil, nil
		}
	}
	return "products.type IN ?", []interface{}{tc.Terms}, nil
}

func randomOrder(dialect string) clause.Expr {
	if dialect == "mysql" {
		return clause.Expr{SQL: "RAND()"}
	}
	return clause.Expr{SQL: "RANDOM()"}
}

func direction(order string) string {
	if strings.EqualFold(order, "ASC") {
		return "ASC"
	}
	return "DESC"
}

// buildOrder renders the ORDER BY as a single expression so gorm keeps every term.
func buildOrder(args query.Args, dialect string) clause.OrderBy {
	var parts []string
	var vars []interface{}

	for _, oc := range args.OrderBy {
		dir := direction(oc.Order)
		switch oc.Field {
		case query.OrderByID:
			parts = append(parts, "products.id "+dir)
		case query.OrderByTitle:
			parts = append(parts, "products.name "+dir)
		case query.OrderByName:
			parts = append(parts, "products.slug "+dir)
		case query.OrderByMenuOrder:
			parts = append(parts, "products.menu_order "+dir)
		case query.OrderByDate:
			parts = append(parts, "products.created_at "+dir)
		case query.OrderByRand:
			parts = append(parts, randomOrder(dialect).SQL)
		case query.OrderByRelevance:
			if args.Search != "" {
				parts = append(parts, "CASE WHEN LOWER(products.name) LIKE ? THEN 0 ELSE 1 END")
				vars = append(vars, "%"+strings.ToLower(args.Search)+"%")
			}
			parts = append(parts, "products.created_at DESC")
		case query.OrderByInclude:
			if len(args.Include) == 0 {
				parts = append(parts, "products.id "+dir)
				continue
			}
			var b strings.Builder
			b.WriteString("CASE products.id")
			for i, id := range args.Include {
				b.WriteString(" WHEN ? THEN ?")
				vars = append(vars, id, i)
			}
			b.WriteString(" ELSE ? END")
			vars = append(vars, len(args.Include))
			parts = append(parts, b.String())
		case query.OrderByMetaValue, query.OrderByMetaValueNum:
			column, ok := metaColumns[args.MetaKey]
			if !ok {
				continue
			}
			parts = append(parts, "CASE WHEN "+column+" IS NULL THEN 1 ELSE 0 END", column+" "+dir)
		}
	}

	if len(parts) == 0 {
		parts = append(parts, "products.created_at DESC")
	}
	// Keeps paging stable when the requested ordering ties.
	parts = append(parts, "products.id DESC")

	return clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(parts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}}
}
