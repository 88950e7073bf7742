// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"greenpoints/config"
	"greenpoints/internal/delivery/api/middleware"
	"greenpoints/internal/delivery/api/router/handler"
	"greenpoints/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	LedgerHandler  *handler.LedgerHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	ledgerHandler  *handler.LedgerHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		ledgerHandler:  params.LedgerHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Passwordless login
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/otp", r.authHandler.RequestOTP, middleware.NewOTPRateLimiter(r.config))
		authGroup.POST("/verify", r.authHandler.VerifyOTP)
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate)

	apiV1.GET("/me", r.ledgerHandler.Me)

	merchantGroup := apiV1.Group("/merchant")
	merchantGroup.Use(r.authMiddleware.RequireRole(entity.RoleMerchant))
	{
		merchantGroup.POST("/codes", r.ledgerHandler.IssueCode)
		merchantGroup.GET("/codes", r.ledgerHandler.ListCodes)
		merchantGroup.GET("/codes/:code/qr", r.ledgerHandler.CodeQR)
	}

	apiV1.POST("/redeem", r.ledgerHandler.Redeem, r.authMiddleware.RequireRole(entity.RoleStandard))

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdministrator))
	{
		adminGroup.GET("/export", r.adminHandler.Export)
		adminGroup.POST("/promote", r.adminHandler.Promote)
	}
}
