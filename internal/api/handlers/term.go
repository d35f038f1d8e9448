package handlers

import (
	"context"
	"errors"
	"net/http"

	"catalogapi/internal/catalog"
	"catalogapi/internal/logger"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

// termParams are the query parameters of a term listing.
type termParams struct {
	Page      int    `mapstructure:"page"`
	PerPage   int    `mapstructure:"per_page"`
	Search    string `mapstructure:"search"`
	Include   []uint `mapstructure:"include"`
	Exclude   []uint `mapstructure:"exclude"`
	Order     string `mapstructure:"order"`
	OrderBy   string `mapstructure:"orderby"`
	HideEmpty bool   `mapstructure:"hide_empty"`
	Parent    *uint  `mapstructure:"parent"`
	Product   uint   `mapstructure:"product"`
	Slug      string `mapstructure:"slug"`
}

func (p termParams) query(taxonomy string) repository.TermQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 10
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
	return repository.TermQuery{
		Taxonomy:  taxonomy,
		Page:      p.Page,
		PerPage:   p.PerPage,
		Order:     p.Order,
		OrderBy:   p.OrderBy,
		HideEmpty: p.HideEmpty,
		Parent:    p.Parent,
		Search:    p.Search,
		Include:   p.Include,
		Exclude:   p.Exclude,
		Slug:      p.Slug,
		ProductID: p.Product,
	}
}

// TermHandler serves the terms of one product taxonomy (categories or tags).
type TermHandler struct {
	terms     *repository.TermRepository
	projector *catalog.Projector
	taxonomy  string
	logger    *logger.Logger
}

func NewTermHandler(terms *repository.TermRepository, projector *catalog.Projector, taxonomy string, logger *logger.Logger) *TermHandler {
	return &TermHandler{
		terms:     terms,
		projector: projector,
		taxonomy:  taxonomy,
		logger:    logger,
	}
}

func (h *TermHandler) List(c *gin.Context) {
	var params termParams
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}

	listTerms(c, h.terms, h.projector, h.logger, params.query(h.taxonomy), 0)
}

func (h *TermHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, h.logger, catalog.ErrInvalidTerm())
		return
	}
	getTerm(c, h.terms, h.projector, h.logger, h.taxonomy, id, 0)
}

// listTerms writes one page of terms with paging headers. attributeID is set
// when the terms belong to a global attribute.
func listTerms(c *gin.Context, terms *repository.TermRepository, projector *catalog.Projector, logger *logger.Logger, q repository.TermQuery, attributeID uint) {
	ctx := c.Request.Context()

	if err := checkTaxonomy(ctx, terms, q.Taxonomy); err != nil {
		respondError(c, logger, err)
		return
	}

	page, err := terms.List(ctx, q)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	views := make([]*catalog.TermView, 0, len(page.Terms))
	for i := range page.Terms {
		view, err := projector.Term(ctx, &page.Terms[i], namespace(c), attributeID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		views = append(views, view)
	}

	paginate(c, projector.Routes(namespace(c)), q.Page, page.Pages, page.Total)
	c.JSON(http.StatusOK, views)
}

func getTerm(c *gin.Context, terms *repository.TermRepository, projector *catalog.Projector, logger *logger.Logger, taxonomy string, id, attributeID uint) {
	ctx := c.Request.Context()

	if err := checkTaxonomy(ctx, terms, taxonomy); err != nil {
		respondError(c, logger, err)
		return
	}

	term, err := terms.Get(ctx, taxonomy, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, logger, catalog.ErrInvalidTerm())
		return
	}
	if err != nil {
		respondError(c, logger, err)
		return
	}

	view, err := projector.Term(ctx, term, namespace(c), attributeID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func checkTaxonomy(ctx context.Context, terms *repository.TermRepository, taxonomy string) error {
	exists, err := terms.TaxonomyExists(ctx, taxonomy)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.ErrInvalidTaxonomy()
	}
	return nil
}
