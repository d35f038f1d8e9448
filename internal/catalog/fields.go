package catalog

import "strings"

// Top level product fields in output order.
var productFields = []string{
	"id", "parent_id", "name", "type", "slug", "permalink", "sku", "description",
	"short_description", "dates", "featured", "prices", "hidden_conditions",
	"average_rating", "review_count", "rating_count", "rated_out_of", "images",
	"categories", "tags", "attributes", "default_attributes", "variations",
	"grouped_products", "stock", "weight", "dimensions", "reviews", "related",
	"upsells", "cross_sells", "total_sales", "external_url", "button_text",
	"add_to_cart", "meta_data",
}

// Fields a variation does not carry.
var variationOmitted = map[string]bool{
	"type": true, "short_description": true, "average_rating": true, "review_count": true,
	"rating_count": true, "rated_out_of": true, "reviews": true, "default_attributes": true,
	"variations": true, "grouped_products": true, "related": true, "upsells": true,
	"cross_sells": true, "external_url": true, "button_text": true,
}

var variationFields = func() []string {
	var fields []string
	for _, f := range productFields {
		if !variationOmitted[f] {
			fields = append(fields, f)
		}
	}
	return fields
}()

const linksField = "_links"

// FieldSet is the set of top level fields a response carries.
type FieldSet struct {
	all      bool
	included map[string]bool
}

// SelectFields resolves a requested field list against schema. A nested
// reference such as "prices.price" selects its whole top level field. An empty
// request selects everything.
func SelectFields(requested []string, schema []string) FieldSet {
	var cleaned []string
	for _, f := range requested {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) == 0 {
		return FieldSet{all: true}
	}

	known := make(map[string]bool, len(schema))
	for _, f := range schema {
		known[f] = true
	}

	set := FieldSet{included: make(map[string]bool)}
	for _, f := range cleaned {
		top := strings.SplitN(f, ".", 2)[0]
		if known[top] || top == linksField {
			set.included[top] = true
		}
	}
	return set
}

func (s FieldSet) Includes(field string) bool {
	return s.all || s.included[field]
}
