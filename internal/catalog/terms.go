package catalog

import (
	"context"
	"fmt"

	"catalogapi/internal/models"
)

type TermImage struct {
	ID   uint   `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name"`
	Alt  string `json:"alt"`
}

// TermView is a category, tag or attribute term. Image and Parent are only
// rendered for categories.
type TermView struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Parent      *uint      `json:"parent,omitempty"`
	Description string     `json:"description"`
	Image       *TermImage `json:"image,omitempty"`
	MenuOrder   int        `json:"menu_order"`
	Count       int        `json:"count"`
	Links       Links      `json:"_links"`
}

type AttributeView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	OrderBy     string `json:"order_by"`
	HasArchives bool   `json:"has_archives"`
	Links       Links  `json:"_links"`
}

type ReviewView struct {
	Review
	Status string `json:"status"`
	Links  Links  `json:"_links"`
}

// Term projects a taxonomy term. attributeID is set for attribute terms, which
// are linked below their attribute.
func (p *Projector) Term(ctx context.Context, t *models.Term, namespace string, attributeID uint) (*TermView, error) {
	routes := p.Routes(namespace)
	v := &TermView{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		MenuOrder:   t.MenuOrder,
		Count:       t.Count,
	}
	if t.Taxonomy == models.TaxonomyCategory {
		parent := t.ParentID
		v.Parent = &parent
		if t.ImageID != 0 {
			images, err := p.source.Images(ctx, []uint{t.ImageID})
			if err != nil {
				return nil, fmt.Errorf("failed to load term image: %w", err)
			}
			if img, ok := images[t.ImageID]; ok {
				v.Image = &TermImage{ID: img.ID, Src: img.URL, Name: img.Title, Alt: img.Alt}
			}
		}
	}
	switch {
	case attributeID != 0:
		v.Links.Add("self", Link{Href: routes.AttributeTerm(attributeID, t.ID)})
		v.Links.Add("collection", Link{Href: routes.AttributeTerms(attributeID)})
	case t.Taxonomy == models.TaxonomyCategory:
		v.Links.Add("self", Link{Href: routes.Term(t.Taxonomy, t.ID)})
		v.Links.Add("collection", Link{Href: routes.Categories()})
		if t.ParentID != 0 {
			v.Links.Add("up", Link{Href: routes.Term(t.Taxonomy, t.ParentID)})
		}
	default:
		v.Links.Add("self", Link{Href: routes.Term(t.Taxonomy, t.ID)})
		v.Links.Add("collection", Link{Href: routes.Tags()})
	}
	return v, nil
}

// Attribute projects an attribute taxonomy.
func (p *Projector) Attribute(a *models.AttributeTaxonomy, namespace string) *AttributeView {
	routes := p.Routes(namespace)
	v := &AttributeView{
		ID:          a.ID,
		Name:        a.Label,
		Slug:        a.TaxonomyName(),
		Type:        a.Type,
		OrderBy:     a.OrderBy,
		HasArchives: a.HasArchives,
	}
	v.Links.Add("self", Link{Href: routes.Attribute(a.ID)})
	v.Links.Add("collection", Link{Href: routes.Attributes()})
	return v
}

// ProductReview projects an approved review for the reviews endpoints.
func (p *Projector) ProductReview(r *models.Review, namespace string) *ReviewView {
	routes := p.Routes(namespace)
	v := &ReviewView{Review: p.Review(r), Status: r.Status}
	v.Links.Add("self", Link{Href: routes.Review(r.ID)})
	v.Links.Add("collection", Link{Href: routes.Reviews()})
	v.Links.Add("up", Link{Href: routes.Product(r.ProductID)})
	return v
}
