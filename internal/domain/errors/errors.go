package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying details. The copy still matches the
// original under errors.Is because Is compares error codes.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches any BaseError with the same business code.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// Account errors
var (
	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"找不到該帳號",
		"",
	)

	ErrAccountExists = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_EXISTS",
		"此電子郵件已註冊",
		"",
	)

	ErrInvalidRole = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ROLE",
		"無效的角色",
		"",
	)

	ErrRoleNotAllowed = NewBaseError(
		http.StatusForbidden,
		"ROLE_NOT_ALLOWED",
		"此電子郵件不允許使用管理員角色",
		"",
	)
)

// Transaction code errors
var (
	ErrInvalidPoints = NewBaseError(
		http.StatusBadRequest,
		"INVALID_POINTS",
		"點數超出允許範圍",
		"",
	)

	ErrInvalidCodeFormat = NewBaseError(
		http.StatusBadRequest,
		"INVALID_CODE_FORMAT",
		"交易代碼格式錯誤",
		"",
	)

	ErrCodeNotFound = NewBaseError(
		http.StatusNotFound,
		"CODE_NOT_FOUND",
		"找不到該交易代碼",
		"",
	)

	ErrCodeAlreadyUsed = NewBaseError(
		http.StatusConflict,
		"CODE_ALREADY_USED",
		"此交易代碼已被兌換",
		"",
	)

	ErrCodeCollision = NewBaseError(
		http.StatusConflict,
		"CODE_COLLISION",
		"交易代碼重複",
		"",
	)

	ErrIssuanceExhausted = NewBaseError(
		http.StatusServiceUnavailable,
		"ISSUANCE_EXHAUSTED",
		"無法產生唯一的交易代碼，請稍後再試",
		"",
	)
)

// OTP errors
var (
	ErrNoChallenge = NewBaseError(
		http.StatusNotFound,
		"NO_CHALLENGE",
		"找不到有效的驗證碼，請重新申請",
		"",
	)

	ErrChallengeExpired = NewBaseError(
		http.StatusGone,
		"CHALLENGE_EXPIRED",
		"驗證碼已過期",
		"",
	)

	ErrTooManyAttempts = NewBaseError(
		http.StatusTooManyRequests,
		"TOO_MANY_ATTEMPTS",
		"驗證失敗次數過多，請重新申請",
		"",
	)

	ErrInvalidOTP = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_OTP",
		"驗證碼錯誤",
		"",
	)

	ErrOTPDeliveryUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"OTP_DELIVERY_UNAVAILABLE",
		"目前無法寄送驗證碼，請稍後再試",
		"",
	)
)

// General errors
var (
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"請先登入",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		"RATE_LIMITED",
		"請求過於頻繁，請稍後再試",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"資料庫交易失敗",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error for callers that need to inspect it.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

func (e *DatabaseExecuteError) Details() string {
	return e.details
}
