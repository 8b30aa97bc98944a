package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/handler/http/middleware"
)

// UserManager is the slice of the user service the user routes consume.
type UserManager interface {
	EditProfile(ctx context.Context, subject, username, avatar string) (*models.User, error)
	Ban(ctx context.Context, subject string) error
	Unban(ctx context.Context, subject string) error
	ChangeRole(ctx context.Context, subject string, role models.Role) error
}

// UserHandler serves the /api/users routes.
type UserHandler struct {
	users  UserManager
	logger *zap.Logger
}

func NewUserHandler(users UserManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Me handles GET /api/users/me: the identity the access gate resolved.
func (h *UserHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

type editProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// EditProfile handles PATCH /api/users/edit_my_profile.
func (h *UserHandler) EditProfile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "not authenticated"})
		return
	}

	var req editProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	user, err := h.users.EditProfile(c.Request.Context(), identity.Email, req.Username, req.Avatar)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user, Detail: "My profile was successfully edited"})
}

// Ban handles PATCH /api/users/:email/ban (admin only).
func (h *UserHandler) Ban(c *gin.Context) {
	subject := c.Param("email")
	if err := h.users.Ban(c.Request.Context(), subject); err != nil {
		abortWithError(c, err)
		return
	}
	h.logger.Info("user banned", zap.String("subject", subject))
	c.JSON(http.StatusOK, MessageResponse{Message: "User banned"})
}

// Unban handles PATCH /api/users/:email/unban (admin only).
func (h *UserHandler) Unban(c *gin.Context) {
	subject := c.Param("email")
	if err := h.users.Unban(c.Request.Context(), subject); err != nil {
		abortWithError(c, err)
		return
	}
	h.logger.Info("user unbanned", zap.String("subject", subject))
	c.JSON(http.StatusOK, MessageResponse{Message: "User unbanned"})
}

type changeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// ChangeRole handles PATCH /api/users/:email/role (admin only).
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	subject := c.Param("email")
	if err := h.users.ChangeRole(c.Request.Context(), subject, req.Role); err != nil {
		abortWithError(c, err)
		return
	}
	h.logger.Info("user role changed",
		zap.String("subject", subject), zap.String("role", string(req.Role)))
	c.JSON(http.StatusOK, MessageResponse{Message: "Role updated"})
}
