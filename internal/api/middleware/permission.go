package middleware

import (
	"crypto/subtle"
	"strings"

	"catalogapi/internal/catalog"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-API-Key"

// APIPermission rejects requests that do not present apiKey, either in the
// X-API-Key header or as a bearer token. An empty apiKey leaves the routes public.
func APIPermission(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				presented = strings.TrimSpace(token)
			}
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			err := catalog.ErrPermissionDenied()
			c.AbortWithStatusJSON(err.Status, err.Body())
			return
		}
		c.Next()
	}
}
