package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"VChat/tools/errs"
	sec "VChat/tools/security"
)

// Context keys set by the middleware for downstream handlers.
const (
	CtxTokenKey  = "authorization"
	CtxUserIDKey = "userID"
)

type Options struct {
	JWT sec.Options

	// HeaderToken is the request header carrying the raw token.
	// Defaults to "Authorization" with Bearer-prefix support.
	HeaderToken               string
	EnableAuthorizationBearer bool

	// QueryToken optionally allows the token as a query parameter,
	// which websocket clients need since they cannot set headers.
	QueryToken string
}

func DefaultOptions(jwt sec.Options) *Options {
	return &Options{
		JWT:                       jwt,
		HeaderToken:               "Authorization",
		EnableAuthorizationBearer: true,
		QueryToken:                "token",
	}
}

var errUnauthorized = errs.NewCodeError(1401, "invalid or missing token")

// Middleware verifies the request token and stores the authenticated
// user id in the gin context under CtxUserIDKey.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
		if opts.EnableAuthorizationBearer {
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[len("bearer "):])
			}
		}
		if token == "" && opts.QueryToken != "" {
			token = strings.TrimSpace(c.Query(opts.QueryToken))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errUnauthorized)
			return
		}
		userID, err := sec.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errUnauthorized.WithDetail(err.Error()))
			return
		}
		c.Set(CtxTokenKey, token)
		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}
