package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"greenpoints/config"
	"greenpoints/internal/delivery/api/response"
	domainerrors "greenpoints/internal/domain/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const limiterExpiry = 10 * time.Minute

// NewOTPRateLimiter throttles login code requests per client IP.
func NewOTPRateLimiter(cfg *config.Config) echo.MiddlewareFunc {
	retryAfter := "1"
	if cfg.OTP.RequestRate > 0 && cfg.OTP.RequestRate < 1 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / cfg.OTP.RequestRate)))
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.OTP.RequestRate),
		Burst:     cfg.OTP.RequestBurst,
		ExpiresIn: limiterExpiry,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return response.Error(c, http.StatusForbidden, domainerrors.ErrForbidden.ErrorCode(), "Client could not be identified", nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set("Retry-After", retryAfter)

			return response.Error(c, domainerrors.ErrRateLimited.HTTPCode(), domainerrors.ErrRateLimited.ErrorCode(),
				domainerrors.ErrRateLimited.Message(), nil)
		},
	})
}
