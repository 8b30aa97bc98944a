package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

// RequireRoles allows the request through only when the resolved identity
// carries one of the allowed roles. It must run after Auth.
func RequireRoles(logger *zap.Logger, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			logger.Error("role check without resolved identity; Auth middleware missing")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "access denied"})
			return
		}

		for _, role := range allowed {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		logger.Warn("insufficient role",
			zap.String("subject", identity.Email),
			zap.String("role", string(identity.Role)),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "access denied"})
	}
}
