package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/handler/http/middleware"
)

// AuthGate is the slice of the auth service the auth routes consume.
type AuthGate interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// Registrar is the slice of the user service the auth routes consume.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error)
	RequestEmailConfirmation(ctx context.Context, email string) (bool, error)
	RequestPasswordReset(ctx context.Context, email string) (bool, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error)
}

// AuthHandler serves the /api/auth routes.
type AuthHandler struct {
	gate   AuthGate
	users  Registrar
	logger *zap.Logger
}

func NewAuthHandler(gate AuthGate, users Registrar, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, users: users, logger: logger}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type userResponse struct {
	User   *models.User `json:"user"`
	Detail string       `json:"detail"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse{
		User:   user,
		Detail: "User successfully created. Check your email for confirmation.",
	})
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. The username field carries the email,
// mirroring the OAuth2 password form the web client already speaks.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	pair, err := h.gate.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh handles GET /api/auth/refresh_token. The refresh token arrives as
// a bearer credential.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := bearerFromHeader(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "not authenticated"})
		return
	}

	pair, err := h.gate.Refresh(c.Request.Context(), token)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout handles POST /api/auth/logout. It runs behind the auth middleware,
// so the token in context is already verified.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.TokenFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: domainErrors.ErrInvalidToken.Error()})
		return
	}
	if err := h.gate.Logout(c.Request.Context(), token); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// ConfirmEmail handles GET /api/auth/confirmed_email/:token.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	already, err := h.users.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		if domainErrors.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Verification error"})
			return
		}
		abortWithError(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, MessageResponse{Message: "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email confirmed"})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestEmail handles POST /api/auth/request_email. The answer does not
// reveal whether the address exists.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	sent, err := h.users.RequestEmailConfirmation(c.Request.Context(), req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if sent {
		c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for confirmation."})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Your email is already confirmed."})
}

// ForgotPassword handles POST /api/auth/forgot_password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	sent, err := h.users.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if sent {
		c.JSON(http.StatusOK, MessageResponse{Message: "Password reset request sent. Check your email for instructions."})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "No user found with the provided email."})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword handles POST /api/auth/reset_password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	user, err := h.users.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Verification error"})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user, Detail: "Password reset complete!"})
}

func bearerFromHeader(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):], true
	}
	return "", false
}
