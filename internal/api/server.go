package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalogapi/internal/api/handlers"
	"catalogapi/internal/api/middleware"
	"catalogapi/internal/cache"
	"catalogapi/internal/catalog"
	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
)

// Extensions are the policies a deployment may plug into query translation
// and response projection.
type Extensions struct {
	Query      query.Policies
	Projection catalog.Policies
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	cache  *cache.Cache
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, c *cache.Cache, ext Extensions) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.NoRoute(handlers.NoRoute)

	products := repository.NewProductRepository(db.DB, c)
	terms := repository.NewTermRepository(db.DB, c)
	reviews := repository.NewReviewRepository(db.DB)
	projector := catalog.NewProjector(products, catalog.NewSettings(cfg), ext.Projection)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(products, terms, projector, cfg.Store, ext.Query, logger)
	variationHandler := handlers.NewVariationHandler(productHandler, projector, cfg.Version, logger)
	categoryHandler := handlers.NewTermHandler(terms, projector, models.TaxonomyCategory, logger)
	tagHandler := handlers.NewTermHandler(terms, projector, models.TaxonomyTag, logger)
	attributeHandler := handlers.NewAttributeHandler(terms, projector, logger)
	reviewHandler := handlers.NewReviewHandler(reviews, projector, logger)
	healthHandler := handlers.NewHealthHandler(db, c)

	router.GET("/health", healthHandler.Check)

	permission := middleware.APIPermission(cfg.APIKey)

	for _, ns := range []string{handlers.NamespaceV1, handlers.NamespaceV2} {
		group := router.Group("/api/"+ns, middleware.Namespace(ns))
		if ns == handlers.NamespaceV2 {
			group.Use(middleware.VersionHeaders(cfg.Version))
		}

		// Products
		catalogRoutes := group.Group("/products")
		{
			catalogRoutes.GET("", productHandler.List)

			// Terms
			catalogRoutes.GET("/categories", permission, categoryHandler.List)
			catalogRoutes.GET("/categories/:id", permission, categoryHandler.Get)
			catalogRoutes.GET("/tags", permission, tagHandler.List)
			catalogRoutes.GET("/tags/:id", permission, tagHandler.Get)

			// Attributes
			catalogRoutes.GET("/attributes", permission, attributeHandler.List)
			catalogRoutes.GET("/attributes/:id", permission, attributeHandler.Get)
			catalogRoutes.GET("/attributes/:id/terms", permission, attributeHandler.Terms)
			catalogRoutes.GET("/attributes/:id/terms/:term_id", permission, attributeHandler.Term)

			// Reviews
			catalogRoutes.GET("/reviews", permission, reviewHandler.List)
			catalogRoutes.GET("/reviews/:id", permission, reviewHandler.Get)

			catalogRoutes.GET("/:id", productHandler.Get)

			// Variations
			catalogRoutes.GET("/:id/variations", permission, variationHandler.List)
			catalogRoutes.GET("/:id/variations/:variation_id", permission, variationHandler.Get)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		cache:  c,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}
