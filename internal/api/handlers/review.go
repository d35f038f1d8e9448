package handlers

import (
	"errors"
	"net/http"

	"catalogapi/internal/catalog"
	"catalogapi/internal/logger"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type reviewParams struct {
	Page    int    `mapstructure:"page"`
	PerPage int    `mapstructure:"per_page"`
	Search  string `mapstructure:"search"`
	Include []uint `mapstructure:"include"`
	Exclude []uint `mapstructure:"exclude"`
	Order   string `mapstructure:"order"`
	OrderBy string `mapstructure:"orderby"`
	Product []uint `mapstructure:"product"`
}

type ReviewHandler struct {
	reviews   *repository.ReviewRepository
	projector *catalog.Projector
	logger    *logger.Logger
}

func NewReviewHandler(reviews *repository.ReviewRepository, projector *catalog.Projector, logger *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		projector: projector,
		logger:    logger,
	}
}

// List serves approved reviews, newest first unless asked otherwise.
func (h *ReviewHandler) List(c *gin.Context) {
	var params reviewParams
	if err := decodeQuery(c, &params); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 10
	}

	page, err := h.reviews.List(c.Request.Context(), repository.ReviewQuery{
		Page:      params.Page,
		PerPage:   params.PerPage,
		Order:     params.Order,
		OrderBy:   params.OrderBy,
		ProductID: params.Product,
		Include:   params.Include,
		Exclude:   params.Exclude,
		Search:    params.Search,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ns := namespace(c)
	views := make([]*catalog.ReviewView, 0, len(page.Reviews))
	for i := range page.Reviews {
		views = append(views, h.projector.ProductReview(&page.Reviews[i], ns))
	}

	paginate(c, h.projector.Routes(ns), params.Page, page.Pages, page.Total)
	c.JSON(http.StatusOK, views)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		respondError(c, h.logger, catalog.ErrInvalidReview())
		return
	}

	review, err := h.reviews.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, h.logger, catalog.ErrInvalidReview())
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.projector.ProductReview(review, namespace(c)))
}
