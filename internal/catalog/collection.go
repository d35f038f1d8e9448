package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"catalogapi/internal/models"
)

// Collection is the v2 product listing body.
type Collection struct {
	Products      []View        `json:"products"`
	Categories    []TermSummary `json:"categories"`
	Tags          []TermSummary `json:"tags"`
	Page          int           `json:"page"`
	TotalPages    int           `json:"total_pages"`
	TotalProducts int64         `json:"total_products"`
	Links         Links         `json:"_links,omitempty"`
}

// TermLister returns every term of a taxonomy.
type TermLister interface {
	All(ctx context.Context, taxonomy string) ([]models.Term, error)
}

// NewCollection wraps projected products with the store's categories and tags.
func NewCollection(ctx context.Context, terms TermLister, routes Routes, products []View, page Page, total int64) (*Collection, error) {
	cats, err := terms.All(ctx, models.TaxonomyCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	tags, err := terms.All(ctx, models.TaxonomyTag)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return &Collection{
		Products:      nonNil(products),
		Categories:    Summaries(routes, cats),
		Tags:          Summaries(routes, tags),
		Page:          page.Current,
		TotalPages:    page.Total,
		TotalProducts: total,
	}, nil
}

// Pagination holds the prev/next links of a listing response.
type Pagination struct {
	Prev string
	Next string
}

// Paginate computes the pagination links of a listing served at base.
func Paginate(base string, query url.Values, page Page) Pagination {
	prev, next := PageLinks(base, query, page)
	return Pagination{Prev: prev, Next: next}
}

// Links returns the pagination links as response links.
func (p Pagination) Links() Links {
	var links Links
	if p.Prev != "" {
		links.Add("prev", Link{Href: p.Prev})
	}
	if p.Next != "" {
		links.Add("next", Link{Href: p.Next})
	}
	return links
}

// Header renders the value of a Link header, or "" without links.
func (p Pagination) Header() string {
	var parts []string
	if p.Prev != "" {
		parts = append(parts, "<"+p.Prev+`>; rel="prev"`)
	}
	if p.Next != "" {
		parts = append(parts, "<"+p.Next+`>; rel="next"`)
	}
	return strings.Join(parts, ", ")
}
