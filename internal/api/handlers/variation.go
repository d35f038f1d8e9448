package handlers

import (
	"errors"
	"net/http"
	"slices"

	"catalogapi/internal/api/middleware"
	"catalogapi/internal/catalog"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type VariationHandler struct {
	products  *ProductHandler
	projector *catalog.Projector
	version   string
	logger    *logger.Logger
}

func NewVariationHandler(products *ProductHandler, projector *catalog.Projector, version string, logger *logger.Logger) *VariationHandler {
	return &VariationHandler{
		products:  products,
		projector: projector,
		version:   version,
		logger:    logger,
	}
}

// parent loads the product named by the :id path parameter.
func (h *VariationHandler) parent(c *gin.Context) (*models.Product, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, catalog.ErrUnknownProduct()
	}
	parent, err := h.products.products.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, catalog.ErrInvalidProduct()
	}
	return parent, err
}

// List serves the published variations of a variable product.
func (h *VariationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	parent, err := h.parent(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var params query.Params
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}
	params.Parent = []uint{parent.ID}
	params.Type = models.TypeVariation
	if params.OrderBy == "" {
		params.OrderBy = "menu_order"
		if params.Order == "" {
			params.Order = "asc"
		}
	}

	args, err := h.products.translate(ctx, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	result, err := h.products.products.Query(ctx, args)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	req := projection(c, params)
	views := make([]*catalog.VariationView, 0, len(result.Products))
	for _, v := range result.Products {
		view, err := h.projector.Variation(ctx, v, parent, req)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		views = append(views, view)
	}

	paginate(c, h.projector.Routes(req.Namespace), args.Page, result.Pages, result.Total)
	c.JSON(http.StatusOK, views)
}

// Get serves one variation after checking it belongs to the product in the path.
func (h *VariationHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "variation_id")
	if !ok {
		respondError(c, h.logger, catalog.ErrUnknownVariation())
		return
	}

	var params query.Params
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}

	variation, err := h.products.products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !variation.IsVariation()) {
		respondError(c, h.logger, catalog.ErrUnknownVariation())
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	parent, err := h.parent(c)
	if err != nil {
		if errors.As(err, new(*catalog.Error)) {
			err = catalog.ErrVariationNotChild()
		}
		respondError(c, h.logger, err)
		return
	}
	children, err := h.products.products.ChildIDs(ctx, parent.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !slices.Contains(children, variation.ID) {
		respondError(c, h.logger, catalog.ErrVariationNotChild())
		return
	}

	view, err := h.projector.Variation(ctx, variation, parent, projection(c, params))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SetVersionHeaders(c, h.version)
	c.JSON(http.StatusOK, view)
}
