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

// LedgerHandlerParams holds dependencies for LedgerHandler, injected by Fx.
type LedgerHandlerParams struct {
	fx.In

	RedemptionUC usecase.RedemptionUsecase
	Logger       *slog.Logger
}

// LedgerHandler serves code issuance, redemption and account history.
type LedgerHandler struct {
	redemptionUC usecase.RedemptionUsecase
	logger       *slog.Logger
}

// NewLedgerHandler is the constructor for LedgerHandler
func NewLedgerHandler(params LedgerHandlerParams) *LedgerHandler {
	return &LedgerHandler{
		redemptionUC: params.RedemptionUC,
		logger:       params.Logger,
	}
}

// IssueCodeRequest represents the request body for minting a code
type IssueCodeRequest struct {
	Points int64 `json:"points"`
}

// RedeemRequest carries a typed code or a scanned QR payload.
type RedeemRequest struct {
	Code string `json:"code" validate:"required,max=512"`
}

// RedeemResponse reports the credit and the new balance.
type RedeemResponse struct {
	Entry   PointLogView `json:"entry"`
	Balance int64        `json:"balance"`
}

// MeResponse is the caller's account with its ledger history.
type MeResponse struct {
	Account AccountView    `json:"account"`
	History []PointLogView `json:"history"`
}

// Me handles GET /api/v1/me
func (h *LedgerHandler) Me(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	overview, err := h.redemptionUC.AccountHistory(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, MeResponse{
		Account: toAccountView(overview.Account),
		History: mapSlice(overview.History, toPointLogView),
	})
}

// IssueCode handles POST /api/v1/merchant/codes
func (h *LedgerHandler) IssueCode(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req IssueCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid code request")
	}

	code, err := h.redemptionUC.IssueCode(c.Request().Context(), actor, req.Points)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, toCodeView(code))
}

// ListCodes handles GET /api/v1/merchant/codes
func (h *LedgerHandler) ListCodes(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	codes, err := h.redemptionUC.MerchantCodes(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapSlice(codes, toCodeView))
}

// CodeQR handles GET /api/v1/merchant/codes/:code/qr
func (h *LedgerHandler) CodeQR(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	png, err := h.redemptionUC.CodeQR(c.Request().Context(), actor, c.Param("code"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.PNG(c, png)
}

// Redeem handles POST /api/v1/redeem
func (h *LedgerHandler) Redeem(c echo.Context) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req RedeemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid redeem request")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validator.FieldErrors(err))
	}

	redemption, err := h.redemptionUC.RedeemCode(c.Request().Context(), actor, req.Code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, RedeemResponse{
		Entry:   toPointLogView(redemption.Log),
		Balance: redemption.Balance,
	})
}
