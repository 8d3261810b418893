package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	sec "VChat/tools/security"
)

func newAuthRouter(t *testing.T, jwt sec.Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(DefaultOptions(jwt)))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuthBearerHeader(t *testing.T) {
	jwt := sec.DefaultOptions([]byte("test-secret"))
	r := newAuthRouter(t, jwt)

	token, _, err := sec.Generate(jwt, "user_42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user_42", w.Body.String())
}

func TestAuthQueryToken(t *testing.T) {
	jwt := sec.DefaultOptions([]byte("test-secret"))
	r := newAuthRouter(t, jwt)

	token, _, err := sec.Generate(jwt, "user_42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user_42", w.Body.String())
}

func TestAuthMissingToken(t *testing.T) {
	r := newAuthRouter(t, sec.DefaultOptions([]byte("test-secret")))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBadToken(t *testing.T) {
	r := newAuthRouter(t, sec.DefaultOptions([]byte("test-secret")))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
