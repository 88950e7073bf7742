package middleware

import (
	"strings"

	"greenpoints/internal/delivery/api/response"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	"greenpoints/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware turns a Bearer session token into an entity.Actor.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the session token and stores the caller on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "Authorization header is missing")
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return response.Unauthorized(c, "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.Validate(strings.TrimSpace(token))
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		deliverycontext.SetActor(c, claims.Actor())

		return next(c)
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(required entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := deliverycontext.GetActor(c)
			if !ok {
				return response.Unauthorized(c, "Authentication required")
			}

			if !actor.Is(required) {
				return response.Forbidden(c, "Permission denied: require '"+required.String()+"' role")
			}

			return next(c)
		}
	}
}

// GetActor returns the authenticated caller for handlers.
func GetActor(c echo.Context) (entity.Actor, bool) {
	return deliverycontext.GetActor(c)
}
