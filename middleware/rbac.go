package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/internal/auth"
)

// Role constants to avoid string typos
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer"
)

// AccessContext stores user access information for downstream handlers
type AccessContext struct {
	UserID         uint
	RoleName       string
	PermissionType string // "full" or "readonly"
}

// NewAccessContext derives the permission set from the user's role
func NewAccessContext(user auth.User) AccessContext {
	permission := "readonly"
	if user.Role == RoleAdmin || user.Role == RoleStaff {
		permission = "full"
	}
	return AccessContext{
		UserID:         user.ID,
		RoleName:       user.Role,
		PermissionType: permission,
	}
}

// CanWrite returns true if the user has write permissions
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == "full"
}

// CanRead returns true if the user has read permissions
func (ac *AccessContext) CanRead() bool {
	return ac.PermissionType == "full" || ac.PermissionType == "readonly"
}

// GetAccessContext extracts the access context set by AuthMiddleware
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	raw, exists := c.Get("access_context")
	if !exists {
		return AccessContext{}, false
	}
	ctx, ok := raw.(AccessContext)
	return ctx, ok
}

// RBACMiddleware checks if the user has one of the allowed roles
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		user, ok := userVal.(auth.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user object"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	}
}

// RequireWriteAccess ensures the user has write access (admin or staff)
func RequireWriteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}

		if !ctx.CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "write access denied"})
			return
		}

		c.Next()
	}
}
