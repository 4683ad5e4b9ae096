package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/domain/entity"
)

const claimsKey = "auth_claims"

// authRequired verifies the bearer token and stores the claims on the
// gin context for downstream handlers.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing or malformed authorization header",
			})
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireRole gates a route group to a single role.
func requireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// claimsFrom returns the verified claims set by authRequired, or nil on
// unauthenticated routes.
func claimsFrom(c *gin.Context) *auth.Claims {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*auth.Claims)
	return claims
}

// corsMiddleware permits cross-origin requests from the frontend.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
