package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"catalogapi/internal/models"
)

// Link is one navigational hyperlink.
type Link struct {
	Href      string `json:"href"`
	Permalink string `json:"permalink,omitempty"`
}

type Relation struct {
	Rel   string
	Links []Link
}

// Links renders as {"rel": [link, ...]} in insertion order.
type Links []Relation

func (l Links) MarshalJSON() ([]byte, error) {
	members := make([]member, len(l))
	for i, rel := range l {
		members[i] = member{rel.Rel, rel.Links}
	}
	return marshalObject(members)
}

// Add appends link under rel.
func (l *Links) Add(rel string, link Link) {
	for i := range *l {
		if (*l)[i].Rel == rel {
			(*l)[i].Links = append((*l)[i].Links, link)
			return
		}
	}
	*l = append(*l, Relation{Rel: rel, Links: []Link{link}})
}

// Get returns the links registered under rel.
func (l Links) Get(rel string) []Link {
	for _, r := range l {
		if r.Rel == rel {
			return r.Links
		}
	}
	return nil
}

// Routes builds API and storefront URLs for one namespace ("v1" or "v2").
type Routes struct {
	BaseURL     string
	Namespace   string
	SiteURL     string
	ShopPageURL string
}

func (r Routes) url(format string, args ...interface{}) string {
	return r.BaseURL + "/" + r.Namespace + fmt.Sprintf(format, args...)
}

// Route resolves a path below the namespace, e.g. "/products/42/variations".
func (r Routes) Route(path string) string {
	return r.BaseURL + "/" + r.Namespace + path
}

func (r Routes) Products() string {
	return r.url("/products")
}

func (r Routes) Product(id uint) string {
	return r.url("/products/%d", id)
}

func (r Routes) Variations(parentID uint) string {
	return r.url("/products/%d/variations", parentID)
}

func (r Routes) Variation(parentID, id uint) string {
	return r.url("/products/%d/variations/%d", parentID, id)
}

// Term returns the endpoint of a category or tag. Attribute terms are only
// addressable through their attribute, see AttributeTerm.
func (r Routes) Term(taxonomy string, id uint) string {
	switch taxonomy {
	case models.TaxonomyCategory:
		return r.url("/products/categories/%d", id)
	case models.TaxonomyTag:
		return r.url("/products/tags/%d", id)
	}
	return ""
}

func (r Routes) Categories() string {
	return r.url("/products/categories")
}

func (r Routes) Tags() string {
	return r.url("/products/tags")
}

func (r Routes) Attributes() string {
	return r.url("/products/attributes")
}

func (r Routes) Attribute(id uint) string {
	return r.url("/products/attributes/%d", id)
}

func (r Routes) AttributeTerms(attributeID uint) string {
	return r.url("/products/attributes/%d/terms", attributeID)
}

func (r Routes) AttributeTerm(attributeID, termID uint) string {
	return r.url("/products/attributes/%d/terms/%d", attributeID, termID)
}

func (r Routes) Reviews() string {
	return r.url("/products/reviews")
}

func (r Routes) Review(id uint) string {
	return r.url("/products/reviews/%d", id)
}

// AddToCart is the cart endpoint adding one unit of a product.
func (r Routes) AddToCart(id uint) string {
	return r.url("/cart/add-item?id=%d&quantity=1", id)
}

// Permalink is the storefront page of a product slug.
func (r Routes) Permalink(slug string) string {
	return r.SiteURL + "/product/" + slug + "/"
}

// VariationPermalink points at the parent page with the variation's attributes preselected.
func (r Routes) VariationPermalink(parentSlug string, attrs []models.VariationAttribute) string {
	base := r.Permalink(parentSlug)
	var query []string
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		query = append(query, "attribute_"+a.Name+"="+url.QueryEscape(a.Value))
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + strings.Join(query, "&")
}

// Page describes where a listing response sits within its result set.
type Page struct {
	Current int
	Total   int
}

// PageLinks returns the previous and next page URLs of a listing. base is the
// listing route with its path parameters substituted; query carries the
// request's query parameters, which are kept. A page past the end links back
// to the last page.
func PageLinks(base string, query url.Values, p Page) (prev, next string) {
	withPage := func(page int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(page))
		return base + "?" + encodeSorted(q)
	}

	if p.Current > 1 {
		prevPage := p.Current - 1
		if prevPage > p.Total {
			prevPage = p.Total
		}
		prev = withPage(prevPage)
	}
	if p.Total > p.Current {
		next = withPage(p.Current + 1)
	}
	return prev, next
}

// encodeSorted is url.Values.Encode without escaping brackets, so bracketed
// parameters stay readable in Link headers.
func encodeSorted(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		key := strings.NewReplacer("%5B", "[", "%5D", "]").Replace(url.QueryEscape(k))
		for _, value := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

// SubstituteRoute fills ":name" segments of a route template from params.
func SubstituteRoute(template string, params map[string]string) string {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			if v, ok := params[seg[1:]]; ok {
				segments[i] = v
			}
		}
	}
	return strings.Join(segments, "/")
}
