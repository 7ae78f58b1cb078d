package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/jwt"
)

const (
	claimsKey      = "auth.claims"
	accessTokenKey = "auth.token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (jwt.Claims, error)
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid, unrevoked access token and
// stores its claims on the context.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if customErrors.IsInternal(err) {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": customErrors.Message(err)})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(accessTokenKey, token)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok || !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func Claims(c *gin.Context) (jwt.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return jwt.Claims{}, false
	}
	claims, ok := v.(jwt.Claims)
	return claims, ok
}

func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}
