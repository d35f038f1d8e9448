package handlers

import (
	"errors"
	"net/http"

	"catalogapi/internal/catalog"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

// AttributeHandler serves global product attributes and their terms.
type AttributeHandler struct {
	terms     *repository.TermRepository
	projector *catalog.Projector
	logger    *logger.Logger
}

func NewAttributeHandler(terms *repository.TermRepository, projector *catalog.Projector, logger *logger.Logger) *AttributeHandler {
	return &AttributeHandler{
		terms:     terms,
		projector: projector,
		logger:    logger,
	}
}

func (h *AttributeHandler) List(c *gin.Context) {
	attrs, err := h.terms.Attributes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ns := namespace(c)
	views := make([]*catalog.AttributeView, 0, len(attrs))
	for i := range attrs {
		views = append(views, h.projector.Attribute(&attrs[i], ns))
	}
	c.JSON(http.StatusOK, views)
}

func (h *AttributeHandler) Get(c *gin.Context) {
	attr, err := h.attribute(c, catalog.ErrInvalidAttribute())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.Attribute(attr, namespace(c)))
}

// Terms lists the terms of an attribute.
func (h *AttributeHandler) Terms(c *gin.Context) {
	attr, err := h.attribute(c, catalog.ErrInvalidTaxonomy())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var params termParams
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}

	listTerms(c, h.terms, h.projector, h.logger, params.query(attr.TaxonomyName()), attr.ID)
}

// Term serves a single term of an attribute.
func (h *AttributeHandler) Term(c *gin.Context) {
	attr, err := h.attribute(c, catalog.ErrInvalidTaxonomy())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, ok := pathID(c, "term_id")
	if !ok {
		respondError(c, h.logger, catalog.ErrInvalidTerm())
		return
	}
	getTerm(c, h.terms, h.projector, h.logger, attr.TaxonomyName(), id, attr.ID)
}

// attribute loads the attribute named by the :id path parameter, reporting
// missing when it does not exist.
func (h *AttributeHandler) attribute(c *gin.Context, missing *catalog.Error) (*models.AttributeTaxonomy, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, missing
	}
	attr, err := h.terms.Attribute(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, missing
	}
	return attr, err
}
