package handler

import (
	"log/slog"
	"net/http"

	"greenpoints/internal/delivery/api/middleware"
	"greenpoints/internal/delivery/api/response"
	"greenpoints/internal/delivery/api/validator"
	"greenpoints/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AdminHandlerParams holds dependencies for AdminHandler, injected by Fx.
type AdminHandlerParams struct {
	fx.In

	AdminUC usecase.AdminUsecase
	Logger  *slog.Logger
}

type AdminHandler struct {
	adminUC usecase.AdminUsecase
	logger  *slog.Logger
}

func NewAdminHandler(params AdminHandlerParams) *AdminHandler {
	return &AdminHandler{
		adminUC: params.AdminUC,
		logger:  params.Logger,
	}
}

// PromoteRequest names the account to promote.
type PromoteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Export handles GET /api/v1/admin/export
func (h *AdminHandler) Export(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	snapshot, err := h.adminUC.Export(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="greenpoints-export.json"`)

	return response.Success(c, http.StatusOK, toSnapshotView(snapshot))
}

// Promote handles POST /api/v1/admin/promote
func (h *AdminHandler) Promote(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req PromoteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid promote request")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	account, err := h.adminUC.Promote(c.Request().Context(), actor, req.Email)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toAccountView(account))
}
