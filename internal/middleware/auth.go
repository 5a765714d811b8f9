package middleware

import (
	"errors"
	"net/http"
	"strings"

	"invoicer/internal/apierror"
	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	PrincipalKey   = "principal"
	authFailureKey = "auth_failure"

	// Message used when a protected route is hit without any usable identity.
	challengeDefault = "full authentication is required to access this resource"
)

// Authenticate resolves the Bearer token on every request without ever
// rejecting one. A missing header, a bad token, or an unknown subject all
// leave the request anonymous; the route-level role guard decides whether
// anonymous is acceptable. Successful tokens are resolved to the CURRENT
// user record, so role changes take effect on the next request, not at the
// next token refresh.
func Authenticate(codec *token.Codec, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims, err := codec.Verify(raw)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				reason = "token expired"
			}
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token verification failed")
			c.Set(authFailureKey, reason)
			c.Next()
			return
		}
		if claims.Kind != token.KindAccess {
			c.Set(authFailureKey, "refresh token cannot be used for access")
			c.Next()
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			log.Debug().Str("subject", claims.Subject).Msg("token subject no longer exists")
			c.Set(authFailureKey, "unknown subject")
			c.Next()
			return
		}

		c.Set(PrincipalKey, model.NewPrincipal(user))
		c.Next()
	}
}

// RequireRole rejects anonymous requests with a 401 challenge and
// authenticated requests lacking every listed role with a 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			reason := c.GetString(authFailureKey)
			if reason == "" {
				reason = challengeDefault
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.NewChallenge(http.StatusUnauthorized, reason, c.Request.URL.Path))
			return
		}
		if !principal.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal, or nil when the
// request is anonymous.
func GetPrincipal(c *gin.Context) *model.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*model.Principal)
	return principal
}
