package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origin rejects browser upgrade requests whose Origin header is not in
// the allow list. An empty allow list accepts everything, which keeps
// non-browser clients (no Origin header) working out of the box.
func Origin(allowed []string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o != "" {
			allow[o] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if len(allow) == 0 {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if _, ok := allow[origin]; !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
