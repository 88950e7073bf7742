package handler

import (
	"log/slog"
	"net/http"
	"time"

	"greenpoints/internal/delivery/api/response"
	"greenpoints/internal/delivery/api/validator"
	"greenpoints/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves the one-time code login flow.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// RequestOTPRequest represents the request body for a login code
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

// VerifyOTPRequest represents the request body for exchanging a login code
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// RequestOTPResponse is returned once a code has been queued for delivery.
type RequestOTPResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyOTPResponse carries the session token.
type VerifyOTPResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	Account   AccountView `json:"account"`
}

// RequestOTP handles POST /auth/otp
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login request")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	out, err := h.authUC.RequestLogin(c.Request().Context(), usecase.RequestLoginInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusAccepted, RequestOTPResponse{ExpiresAt: out.ExpiresAt})
}

// VerifyOTP handles POST /auth/verify
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid verification request")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	out, err := h.authUC.VerifyLogin(c.Request().Context(), usecase.VerifyLoginInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, VerifyOTPResponse{
		Token:     out.Token,
		TokenType: "Bearer",
		ExpiresAt: out.ExpiresAt,
		Account:   toAccountView(out.Account),
	})
}
