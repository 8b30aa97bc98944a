package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
)

// ErrorResponse is the JSON error body for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the JSON body for plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// abortWithError maps domain errors onto HTTP statuses. Anything that is not
// a recognized domain error is a connectivity or programming failure and
// fails closed as 500 without leaking the cause.
func abortWithError(c *gin.Context, err error) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.StatusCode, ErrorResponse{Detail: appErr.Message})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrUserBanned):
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Detail: domainErrors.ErrUserBanned.Error()})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Detail: domainErrors.ErrForbidden.Error()})
	case errors.Is(err, domainErrors.ErrInvalidRefreshToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Detail: domainErrors.ErrInvalidRefreshToken.Error()})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Detail: domainErrors.ErrInvalidCredentials.Error()})
	case errors.Is(err, domainErrors.ErrEmailNotConfirmed):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Detail: domainErrors.ErrEmailNotConfirmed.Error()})
	case domainErrors.IsUnauthorized(err):
		// Deliberately generic: malformed, expired, wrong-scope, revoked and
		// unknown-subject tokens all read the same from outside.
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Detail: domainErrors.ErrInvalidToken.Error()})
	case domainErrors.IsConflict(err):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Detail: err.Error()})
	case domainErrors.IsNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
	}
}
