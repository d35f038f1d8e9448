package handlers

import (
	"net/http"

	"catalogapi/internal/cache"
	"catalogapi/internal/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db    *database.Database
	cache *cache.Cache
}

func NewHealthHandler(db *database.Database, cache *cache.Cache) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
	}
}

// Check reports whether the database and, when configured, redis answer.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok"}

	if err := h.db.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = err.Error()
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["cache"] = err.Error()
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
