package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	NamespaceKey = "namespace"

	TimestampHeader = "Catalog-Timestamp"
	VersionHeader   = "Catalog-Version"
)

// Namespace records which API version a route group serves.
func Namespace(namespace string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(NamespaceKey, namespace)
		c.Next()
	}
}

// VersionHeaders stamps responses with the time they were produced and the
// API version that produced them.
func VersionHeaders(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetVersionHeaders(c, version)
		c.Next()
	}
}

func SetVersionHeaders(c *gin.Context, version string) {
	c.Header(TimestampHeader, strconv.FormatInt(time.Now().Unix(), 10))
	c.Header(VersionHeader, version)
}
