// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

const principalKey = "principal"

// Authenticator turns a bearer token into a principal
type Authenticator interface {
	Authenticate(tokenString string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token and stores the caller's principal
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperror.Unauthorized("authorization header required"))
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			abortWithError(c, apperror.Unauthorized("invalid authorization header format"))
			return
		}

		principal, err := authenticator.Authenticate(tokenString)
		if err != nil {
			abortWithError(c, apperror.New(apperror.TypeAuth, "invalid or expired token", err))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuth stores the principal when a valid token is present and
// lets anonymous requests through otherwise
func OptionalAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString != "" {
			if principal, err := authenticator.Authenticate(tokenString); err == nil {
				c.Set(principalKey, principal)
			}
		}
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
// Must run after Authenticate.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			abortWithError(c, apperror.Unauthorized("authentication required"))
			return
		}
		if !slices.Contains(roles, principal.Role) {
			abortWithError(c, apperror.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// RequireStaff admits every operations role
func RequireStaff() gin.HandlerFunc {
	return RequireRole(auth.RoleSuperAdmin, auth.RoleCampusAdmin, auth.RoleRestaurantManager)
}

// PrincipalFromContext returns the authenticated principal, if any
func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := v.(auth.Principal)
	return principal, ok
}

// Actor names the caller for audit fields
func Actor(c *gin.Context) string {
	if principal, ok := PrincipalFromContext(c); ok {
		if principal.Email != "" {
			return principal.Email
		}
		return principal.UserID
	}
	return "guest"
}

func abortWithError(c *gin.Context, err error) {
	status, body := apperror.Response(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
