package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/token"
)

// Machine-stable rejection reasons.
const (
	ReasonUnauthenticated = "Unauthenticated"
	ReasonInvalidToken    = "InvalidToken"
	ReasonForbidden       = "Forbidden"
)

const claimsContextKey = "authClaims"

// ClaimsFromContext extracts the verified claims attached by
// Authenticate. It returns false when the request never passed the
// authentication gate.
func ClaimsFromContext(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}

func reject(c *gin.Context, status int, reason string) {
	c.AbortWithStatusJSON(status, gin.H{"error": reason})
}

type AuthMiddleware struct {
	codec *token.Codec
}

func NewAuthMiddleware(codec *token.Codec) *AuthMiddleware {
	return &AuthMiddleware{codec: codec}
}

// Authenticate extracts and verifies the bearer credential. It is
// mandatory and always first in the chain; every downstream gate
// consumes the claims it attaches. A missing credential rejects before
// any other gate runs.
func (a *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			reject(c, http.StatusUnauthorized, ReasonUnauthenticated)
			return
		}

		credential := strings.TrimPrefix(header, "Bearer ")
		if credential == "" {
			reject(c, http.StatusUnauthorized, ReasonUnauthenticated)
			return
		}

		claims, err := a.codec.Verify(credential)
		if err != nil {
			reject(c, http.StatusUnauthorized, ReasonInvalidToken)
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRole passes only claims whose role is in the allowed set.
// Gates operate purely on the verified claims; no I/O.
func RequireRole(roles ...store.Role) gin.HandlerFunc {
	allowed := make(map[store.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			reject(c, http.StatusUnauthorized, ReasonUnauthenticated)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			reject(c, http.StatusForbidden, ReasonForbidden)
			return
		}
		c.Next()
	}
}

func ArtisanOnly() gin.HandlerFunc  { return RequireRole(store.RoleArtisan) }
func CustomerOnly() gin.HandlerFunc { return RequireRole(store.RoleCustomer) }
func AdminOnly() gin.HandlerFunc    { return RequireRole(store.RoleAdmin) }

func requireFlag(pick func(*token.Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			reject(c, http.StatusUnauthorized, ReasonUnauthenticated)
			return
		}
		if !pick(claims) {
			reject(c, http.StatusForbidden, ReasonForbidden)
			return
		}
		c.Next()
	}
}

func RequireEmailVerified() gin.HandlerFunc {
	return requireFlag(func(cl *token.Claims) bool { return cl.IsEmailVerified })
}

func RequirePhoneVerified() gin.HandlerFunc {
	return requireFlag(func(cl *token.Claims) bool { return cl.IsPhoneVerified })
}

func RequireProfileComplete() gin.HandlerFunc {
	return requireFlag(func(cl *token.Claims) bool { return cl.ProfileComplete })
}
