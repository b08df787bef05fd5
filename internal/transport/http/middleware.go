package transport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	usersdomain "github.com/broasteria/broasteria/internal/domains/users/domain"
	usersports "github.com/broasteria/broasteria/internal/domains/users/ports"
)

const claimsKey = "authClaims"

// Authenticate verifies the Bearer token and parks the claims on the
// request context. Requests without a valid token are rejected.
func Authenticate(users usersports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondFail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := users.Verify(c.Request.Context(), token)
		if err != nil {
			respondFail(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireTenant rejects tokens issued for a different tenant than the
// one addressed by the path. Admin tokens cross tenants.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			respondFail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		tenantID := c.Param("tenantId")
		if claims.Role != usersdomain.RoleAdmin && claims.TenantID != tenantID {
			respondFail(c, http.StatusForbidden, "token is not valid for this tenant")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole gates a route group to the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			respondFail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		if !allowed[claims.Role] {
			respondFail(c, http.StatusForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *usersdomain.Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*usersdomain.Claims)
	if !ok {
		return nil
	}
	return claims
}
