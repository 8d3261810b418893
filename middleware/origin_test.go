package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newOriginRouter(allowed []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Origin(allowed))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func originRequest(r *gin.Engine, origin string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestOriginAllowList(t *testing.T) {
	r := newOriginRouter([]string{"https://app.example.com"})

	require.Equal(t, http.StatusOK, originRequest(r, "https://app.example.com"))
	require.Equal(t, http.StatusForbidden, originRequest(r, "https://evil.example.com"))
	require.Equal(t, http.StatusOK, originRequest(r, ""), "non-browser clients send no Origin")
}

func TestOriginEmptyListAllowsAll(t *testing.T) {
	r := newOriginRouter(nil)
	require.Equal(t, http.StatusOK, originRequest(r, "https://anywhere.example.com"))

	// an accidentally empty entry must not lock everyone out
	r = newOriginRouter([]string{""})
	require.Equal(t, http.StatusOK, originRequest(r, "https://anywhere.example.com"))
}
