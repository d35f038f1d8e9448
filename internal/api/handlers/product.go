package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalogapi/internal/catalog"
	"catalogapi/internal/config"
	"catalogapi/internal/logger"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products  *repository.ProductRepository
	terms     *repository.TermRepository
	projector *catalog.Projector
	store     config.Store
	policies  query.Policies
	logger    *logger.Logger
}

func NewProductHandler(products *repository.ProductRepository, terms *repository.TermRepository, projector *catalog.Projector, store config.Store, policies query.Policies, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		products:  products,
		terms:     terms,
		projector: projector,
		store:     store,
		policies:  policies,
		logger:    logger,
	}
}

func projection(c *gin.Context, params query.Params) catalog.Request {
	return catalog.Request{
		Namespace:   namespace(c),
		Fields:      params.Fields,
		TaxDisplay:  params.TaxDisplay,
		ShowReviews: params.ShowReviews,
	}
}

// translate turns request parameters into repository args using the store's
// settings and registered attribute taxonomies.
func (h *ProductHandler) translate(ctx context.Context, params query.Params) (query.Args, error) {
	names, err := h.products.AttributeTaxonomyNames(ctx)
	if err != nil {
		return query.Args{}, err
	}
	store := query.Store{
		DefaultOrderBy:           h.store.DefaultOrderBy,
		DefaultOrder:             h.store.DefaultOrder,
		DefaultPerPage:           h.store.DefaultPerPage,
		DefaultCatalogVisibility: h.store.DefaultCatalogVisibility,
		IncludeVariations:        h.store.IncludeVariations,
		AttributeTaxonomies:      names,
		OnSaleIDs: func() ([]uint, error) {
			return h.products.OnSaleIDs(ctx)
		},
	}
	return query.Translate(params, store, h.policies)
}

// List serves the product collection. v1 answers with a bare array, v2 wraps
// the products with the store's categories, tags and paging details.
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var params query.Params
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}

	args, err := h.translate(ctx, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.products.Query(ctx, args)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	req := projection(c, params)
	views := make([]catalog.View, 0, len(result.Products))
	for _, p := range result.Products {
		view, err := h.projector.Any(ctx, p, req)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		views = append(views, view)
	}

	routes := h.projector.Routes(req.Namespace)
	pagination := paginate(c, routes, args.Page, result.Pages, result.Total)

	if req.Namespace == NamespaceV1 {
		c.JSON(http.StatusOK, views)
		return
	}

	collection, err := catalog.NewCollection(ctx, h.terms, routes, views,
		catalog.Page{Current: args.Page, Total: result.Pages}, result.Total)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	collection.Links = pagination.Links()
	c.JSON(http.StatusOK, collection)
}

// Get serves a single product looked up by id, SKU or slug.
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	var params query.Params
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}

	id, err := h.resolve(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	product, err := h.products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !product.IsPublished()) {
		respondError(c, h.logger, catalog.ErrInvalidProduct())
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.projector.Any(ctx, product, projection(c, params))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// resolve maps a path identifier to a product id. Numeric identifiers are
// used as is; anything else is tried as a SKU and then as a slug.
func (h *ProductHandler) resolve(ctx context.Context, raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return uint(id), nil
	}
	if raw == "" {
		return 0, catalog.ErrUnknownProduct()
	}

	id, err := h.products.IDBySKU(ctx, raw)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	id, err = h.products.IDBySlug(ctx, raw)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, catalog.ErrUnknownProduct()
	}
	return id, err
}
