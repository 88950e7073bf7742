package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResendSender_RequiresCredentials(t *testing.T) {
	_, err := NewResendSender(config.ResendConfig{From: "noreply@example.com"}, discardLogger())
	assert.Error(t, err)

	_, err = NewResendSender(config.ResendConfig{APIKey: "key"}, discardLogger())
	assert.Error(t, err)
}

func TestResendSender_Send(t *testing.T) {
	var got resendEmail
	var gotAuth, gotRequestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender(config.ResendConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "re_test",
		From:    "noreply@example.com",
	}, discardLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), service.OTPMessage{
		RequestID: "req-1",
		Email:     "alice@example.com",
		Code:      "042917",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, []string{"alice@example.com"}, got.To)
	assert.Equal(t, "noreply@example.com", got.From)
	assert.Equal(t, defaultResendSubject, got.Subject)
	assert.Contains(t, got.Text, "042917")
}

func TestResendSender_StatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantPermanent bool
	}{
		{"validation error is permanent", http.StatusUnprocessableEntity, true},
		{"unauthorized is permanent", http.StatusUnauthorized, true},
		{"throttling is transient", http.StatusTooManyRequests, false},
		{"server error is transient", http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			sender, err := NewResendSender(config.ResendConfig{BaseURL: srv.URL, APIKey: "k", From: "f@example.com"}, discardLogger())
			require.NoError(t, err)

			err = sender.Send(context.Background(), service.OTPMessage{Email: "alice@example.com", Code: "000000"})
			require.Error(t, err)
			assert.Equal(t, tt.wantPermanent, IsPermanent(err))
		})
	}
}

func TestNewOTPSender_ProviderSelection(t *testing.T) {
	cfg := &config.Config{}

	sender, err := NewOTPSender(SenderParams{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	assert.IsType(t, &logSender{}, sender)
	assert.NoError(t, sender.Send(context.Background(), service.OTPMessage{Email: "a@example.com", Code: "111111"}))

	cfg.Delivery.Provider = config.DeliveryProviderResend
	cfg.Delivery.Resend = config.ResendConfig{APIKey: "k", From: "f@example.com"}
	sender, err = NewOTPSender(SenderParams{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)
	assert.IsType(t, &resendSender{}, sender)

	cfg.Delivery.Provider = "carrier-pigeon"
	_, err = NewOTPSender(SenderParams{Config: cfg, Logger: discardLogger()})
	assert.Error(t, err)
}
