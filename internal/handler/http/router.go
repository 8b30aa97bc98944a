// Package http wires the gin router for the auth service: public auth
// routes, protected user routes and the operational endpoints.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/handler/http/middleware"
)

// Gate is everything the router needs from the auth service.
type Gate interface {
	AuthGate
	middleware.IdentityResolver
}

// Users is everything the router needs from the user service.
type Users interface {
	Registrar
	UserManager
}

// NewRouter assembles the HTTP surface.
func NewRouter(gate Gate, users Users, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Cors())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := NewAuthHandler(gate, users, logger)
	userHandler := NewUserHandler(users, logger)

	requireAuth := middleware.Auth(gate, logger)
	adminOnly := middleware.RequireRoles(logger, models.RoleAdmin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/refresh_token", authHandler.Refresh)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/confirmed_email/:token", authHandler.ConfirmEmail)
			auth.POST("/request_email", authHandler.RequestEmail)
			auth.POST("/forgot_password", authHandler.ForgotPassword)
			auth.POST("/reset_password", authHandler.ResetPassword)
		}

		usersGroup := api.Group("/users", requireAuth)
		{
			usersGroup.GET("/me", userHandler.Me)
			usersGroup.PATCH("/edit_my_profile", userHandler.EditProfile)
			usersGroup.PATCH("/:email/ban", adminOnly, userHandler.Ban)
			usersGroup.PATCH("/:email/unban", adminOnly, userHandler.Unban)
			usersGroup.PATCH("/:email/role", adminOnly, userHandler.ChangeRole)
		}
	}

	return router
}
