package middleware

import (
	"context"
	"strings"

	"votemate/internal/apperr"
	"votemate/internal/services"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie carrying the identity token.
const TokenCookie = "token"

const (
	IdentityKey    = "identity"
	identityErrKey = "identity_error"
	bearerPrefix   = "Bearer "
)

// Resolver maps an identity token to a caller.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*services.Identity, error)
}

// LoadIdentity resolves the token from the cookie or the Authorization header and
// stores the identity on the context. Requests without a valid token continue anonymously.
func LoadIdentity(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Set(identityErrKey, err)
		} else {
			c.Set(IdentityKey, identity)
		}
		c.Next()
	}
}

// AuthRequired rejects requests that LoadIdentity could not authenticate.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(IdentityKey); exists {
			c.Next()
			return
		}
		if err, ok := c.Get(identityErrKey); ok {
			AbortWithError(c, err.(error))
			return
		}
		AbortWithError(c, apperr.Authentication("Not authorized, no token provided"))
	}
}

// CurrentIdentity returns the authenticated caller, or nil.
func CurrentIdentity(c *gin.Context) *services.Identity {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	return v.(*services.Identity)
}

func requestToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	return ""
}
