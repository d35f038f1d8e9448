package handlers

import (
	"errors"
	"strconv"
	"strings"

	"catalogapi/internal/api/middleware"
	"catalogapi/internal/catalog"
	"catalogapi/internal/logger"
	"catalogapi/internal/query"

	"github.com/gin-gonic/gin"
)

const (
	NamespaceV1 = "v1"
	NamespaceV2 = "v2"
)

// respondError writes err as a catalog error document. Errors that are not
// *catalog.Error are logged and reported as internal errors.
func respondError(c *gin.Context, logger *logger.Logger, err error) {
	var apiErr *catalog.Error
	var paramErr *query.ParamError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &paramErr):
		param := paramErr.Param
		if param == "" {
			param = "query"
		}
		apiErr = catalog.ErrInvalidParam(param, paramErr.Message)
	default:
		logger.Error("Request %s %s failed (request %s): %v",
			c.Request.Method, c.Request.URL.Path, c.GetString(middleware.RequestIDKey), err)
		apiErr = catalog.ErrInternal()
	}
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Body())
}

func namespace(c *gin.Context) string {
	if ns := c.GetString(middleware.NamespaceKey); ns != "" {
		return ns
	}
	return NamespaceV2
}

// pathID parses a numeric path parameter. ok is false for anything that is
// not a positive integer.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// listingURL is the absolute URL of the matched route with its path
// parameters filled in.
func listingURL(c *gin.Context, routes catalog.Routes) string {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	route := strings.TrimPrefix(c.FullPath(), "/api/"+routes.Namespace)
	return routes.Route(catalog.SubstituteRoute(route, params))
}

// paginate sets the total and link headers of the listing being served.
func paginate(c *gin.Context, routes catalog.Routes, current, pages int, total int64) catalog.Pagination {
	base := listingURL(c, routes)
	pagination := catalog.Paginate(base, c.Request.URL.Query(), catalog.Page{Current: current, Total: pages})
	c.Header("X-WP-Total", strconv.FormatInt(total, 10))
	c.Header("X-WP-TotalPages", strconv.Itoa(pages))
	if link := pagination.Header(); link != "" {
		c.Header("Link", link)
	}
	return pagination
}

// decodeQuery decodes the request's query string into a mapstructure tagged struct.
func decodeQuery(c *gin.Context, out interface{}) error {
	return query.DecodeInto(query.FromValues(c.Request.URL.Query()), out)
}

// NoRoute answers unknown routes in the catalog error format.
func NoRoute(c *gin.Context) {
	err := catalog.ErrNoRoute()
	c.AbortWithStatusJSON(err.Status, err.Body())
}
