package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

const (
	authHeaderKey  = "Authorization"
	authTypeBearer = "bearer"

	// ContextIdentityKey holds the resolved *models.Identity.
	ContextIdentityKey = "identity"
	// ContextTokenKey holds the raw bearer token, needed by logout.
	ContextTokenKey = "accessToken"
)

// IdentityResolver is the access-gate decision this middleware applies to
// every protected request.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*models.Identity, error)
}

// Auth extracts the bearer token, resolves the caller's identity through the
// access gate and stores it in the request context. Token failures answer
// with one deliberately generic 401; a banned account answers 403 with a
// distinct message.
func Auth(gate IdentityResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearer(c.GetHeader(authHeaderKey))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
			return
		}

		identity, err := gate.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrUserBanned):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": domainErrors.ErrUserBanned.Error()})
			case errors.Is(err, domainErrors.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": domainErrors.ErrInvalidToken.Error()})
			default:
				// Cache or store connectivity failure: fail closed.
				logger.Error("identity resolution failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			}
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok
}

// TokenFrom returns the raw bearer token stored by Auth.
func TokenFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}

func extractBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authTypeBearer) || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
