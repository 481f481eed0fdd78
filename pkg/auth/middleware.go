package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pureplay/pkg/response"
)

const ctxKey = "authContext"

// Middleware validates the Authorization header and stores the resulting
// caller Context for handlers to pick up via FromGin.
func Middleware(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		authCtx, err := issuer.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxKey, authCtx)
		c.Next()
	}
}

// FromGin returns the caller stored by Middleware.
func FromGin(c *gin.Context) (*Context, bool) {
	v, ok := c.Get(ctxKey)
	if !ok {
		return nil, false
	}
	authCtx, ok := v.(*Context)
	return authCtx, ok
}
