package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greenpoints/internal/delivery/api/validator"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContext(method, target, body string, actor *entity.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		deliverycontext.SetActor(c, *actor)
	}

	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func TestAuthHandler_RequestOTP(t *testing.T) {
	authUC := &mockAuthUsecase{}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: testLogger()})

	expires := time.Now().Add(10 * time.Minute).UTC()
	authUC.On("RequestLogin", mock.Anything, usecase.RequestLoginInput{Email: "a@example.com", Role: "merchant"}).
		Return(&usecase.RequestLoginOutput{ExpiresAt: expires}, nil)

	c, rec := newContext(http.MethodPost, "/auth/otp", `{"email":"a@example.com","role":"merchant"}`, nil)
	require.NoError(t, h.RequestOTP(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var out RequestOTPResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.True(t, expires.Equal(out.ExpiresAt))
	authUC.AssertExpectations(t)
}

func TestAuthHandler_RequestOTP_Validation(t *testing.T) {
	authUC := &mockAuthUsecase{}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: testLogger()})

	c, rec := newContext(http.MethodPost, "/auth/otp", `{"email":"nope","role":"owner"}`, nil)
	require.NoError(t, h.RequestOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.NotNil(t, env.Error.Details)
	authUC.AssertNotCalled(t, "RequestLogin", mock.Anything, mock.Anything)
}

func TestAuthHandler_VerifyOTP_DomainError(t *testing.T) {
	authUC := &mockAuthUsecase{}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: testLogger()})

	authUC.On("VerifyLogin", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrTooManyAttempts)

	c, rec := newContext(http.MethodPost, "/auth/verify", `{"email":"a@example.com","otp":"123456"}`, nil)
	require.NoError(t, h.VerifyOTP(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", decode(t, rec).Error.Code)
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	authUC := &mockAuthUsecase{}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: testLogger()})

	account := &entity.Account{ID: uuid.New(), Email: "a@example.com", Role: entity.RoleStandard}
	authUC.On("VerifyLogin", mock.Anything, usecase.VerifyLoginInput{Email: "a@example.com", OTP: "123456"}).
		Return(&usecase.VerifyLoginOutput{Token: "tkn", ExpiresAt: time.Now(), Account: account}, nil)

	c, rec := newContext(http.MethodPost, "/auth/verify", `{"email":"a@example.com","otp":"123456"}`, nil)
	require.NoError(t, h.VerifyOTP(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out VerifyOTPResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Equal(t, "tkn", out.Token)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, account.ID, out.Account.ID)
}

func TestLedgerHandler_IssueCode(t *testing.T) {
	redemptionUC := &mockRedemptionUsecase{}
	h := NewLedgerHandler(LedgerHandlerParams{RedemptionUC: redemptionUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleMerchant}

	redemptionUC.On("IssueCode", mock.Anything, actor, int64(25)).
		Return(&entity.TransactionCode{Code: "ABCD2345", MerchantID: actor.AccountID, Points: 25}, nil)

	c, rec := newContext(http.MethodPost, "/api/v1/merchant/codes", `{"points":25}`, &actor)
	require.NoError(t, h.IssueCode(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var out CodeView
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Equal(t, "ABCD2345", out.Code)
	assert.Equal(t, "pending", out.State)
}

func TestLedgerHandler_IssueCode_ServerErrorIsReturned(t *testing.T) {
	redemptionUC := &mockRedemptionUsecase{}
	h := NewLedgerHandler(LedgerHandlerParams{RedemptionUC: redemptionUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleMerchant}

	redemptionUC.On("IssueCode", mock.Anything, actor, int64(25)).Return(nil, domainerrors.ErrIssuanceExhausted)

	c, _ := newContext(http.MethodPost, "/api/v1/merchant/codes", `{"points":25}`, &actor)
	err := h.IssueCode(c)
	assert.ErrorIs(t, err, domainerrors.ErrIssuanceExhausted)
}

func TestLedgerHandler_Redeem(t *testing.T) {
	redemptionUC := &mockRedemptionUsecase{}
	h := NewLedgerHandler(LedgerHandlerParams{RedemptionUC: redemptionUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleStandard}

	redemptionUC.On("RedeemCode", mock.Anything, actor, "ABCD2345").Return(&usecase.Redemption{
		Log:     &entity.PointLog{ID: 1, AccountID: actor.AccountID, Points: 25, Code: "ABCD2345"},
		Balance: 75,
	}, nil)
	redemptionUC.On("RedeemCode", mock.Anything, actor, "USED2345").Return(nil, domainerrors.ErrCodeAlreadyUsed)

	c, rec := newContext(http.MethodPost, "/api/v1/redeem", `{"code":"ABCD2345"}`, &actor)
	require.NoError(t, h.Redeem(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out RedeemResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Equal(t, int64(75), out.Balance)
	assert.Equal(t, int64(25), out.Entry.Points)

	c, rec = newContext(http.MethodPost, "/api/v1/redeem", `{"code":"USED2345"}`, &actor)
	require.NoError(t, h.Redeem(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CODE_ALREADY_USED", decode(t, rec).Error.Code)

	c, rec = newContext(http.MethodPost, "/api/v1/redeem", `{}`, &actor)
	require.NoError(t, h.Redeem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler_MissingActor(t *testing.T) {
	h := NewLedgerHandler(LedgerHandlerParams{RedemptionUC: &mockRedemptionUsecase{}, Logger: testLogger()})

	c, rec := newContext(http.MethodGet, "/api/v1/me", "", nil)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLedgerHandler_CodeQR(t *testing.T) {
	redemptionUC := &mockRedemptionUsecase{}
	h := NewLedgerHandler(LedgerHandlerParams{RedemptionUC: redemptionUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleMerchant}

	redemptionUC.On("CodeQR", mock.Anything, actor, "ABCD2345").Return([]byte("\x89PNG..."), nil)

	c, rec := newContext(http.MethodGet, "/api/v1/merchant/codes/ABCD2345/qr", "", &actor)
	c.SetParamNames("code")
	c.SetParamValues("ABCD2345")
	require.NoError(t, h.CodeQR(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}

func TestAdminHandler_Export(t *testing.T) {
	adminUC := &mockAdminUsecase{}
	h := NewAdminHandler(AdminHandlerParams{AdminUC: adminUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleAdministrator}

	adminUC.On("Export", mock.Anything, actor).Return(&usecase.Snapshot{
		GeneratedAt: time.Now(),
		Accounts:    []*entity.Account{{ID: actor.AccountID, Email: "root@example.com", Role: entity.RoleAdministrator}},
	}, nil)

	c, rec := newContext(http.MethodGet, "/api/v1/admin/export", "", &actor)
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out SnapshotView
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Len(t, out.Accounts, 1)
	assert.Empty(t, out.Codes)
	assert.NotNil(t, out.Codes)
}

func TestAdminHandler_Promote(t *testing.T) {
	adminUC := &mockAdminUsecase{}
	h := NewAdminHandler(AdminHandlerParams{AdminUC: adminUC, Logger: testLogger()})
	actor := entity.Actor{AccountID: uuid.New(), Role: entity.RoleAdministrator}

	adminUC.On("Promote", mock.Anything, actor, "ops@example.com").Return(nil, domainerrors.ErrRoleNotAllowed)

	c, rec := newContext(http.MethodPost, "/api/v1/admin/promote", `{"email":"ops@example.com"}`, &actor)
	require.NoError(t, h.Promote(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ROLE_NOT_ALLOWED", decode(t, rec).Error.Code)
}
