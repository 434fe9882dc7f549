package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/services"
	"github.com/princinho/weatherbackend/utils"
)

// Context keys set by SessionRequired.
const (
	ClaimsKey = "claims"
	TokenKey  = "token"
)

// tokenHeaders is the lookup order for the session token.
var tokenHeaders = []string{"x-access-token", "access-token", "Authorization"}

// TokenChecker is the part of services.TokenService the middleware needs.
type TokenChecker interface {
	Now() time.Time
	Validate(token string, now time.Time) (*services.Claims, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// ExtractToken returns the first non-empty token header, without an optional
// Bearer prefix.
func ExtractToken(h http.Header) string {
	for _, name := range tokenHeaders {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
			v = strings.TrimSpace(v[7:])
		}
		return v
	}
	return ""
}

// SessionRequired validates the token, then checks the blacklist, and stores
// the claims and raw token on the context.
func SessionRequired(tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c.Request.Header)
		if tokenStr == "" {
			utils.AbortWithError(c, common.ErrMissingToken)
			return
		}

		claims, err := tokens.Validate(tokenStr, tokens.Now())
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		revoked, err := tokens.IsRevoked(c.Request.Context(), tokenStr)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		if revoked {
			utils.AbortWithError(c, common.ErrRevokedToken)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, tokenStr)
		c.Next()
	}
}

// ElevatedRequired must run after SessionRequired.
func ElevatedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			utils.AbortWithError(c, common.ErrMissingToken)
			return
		}
		if !claims.Admin {
			utils.AbortWithError(c, common.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*services.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(TokenKey)
}
