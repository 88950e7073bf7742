package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"greenpoints/config"
	"greenpoints/internal/domain/service"
	"greenpoints/internal/util"

	"github.com/pkg/errors"
)

const (
	defaultResendBaseURL = "https://api.resend.com"
	defaultResendSubject = "Your Green Points login code"
	defaultResendTimeout = 10 * time.Second
)

// resendSender posts emails to a Resend-compatible HTTP API.
type resendSender struct {
	baseURL    string
	apiKey     string
	from       string
	subject    string
	httpClient *http.Client
	logger     *slog.Logger
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// NewResendSender builds the sender from the delivery.resend section.
func NewResendSender(cfg config.ResendConfig, logger *slog.Logger) (service.OTPSender, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("resend sender address is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultResendSubject
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultResendTimeout
	}

	return &resendSender{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		subject:    subject,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (s *resendSender) Send(ctx context.Context, msg service.OTPMessage) error {
	body, err := json.Marshal(resendEmail{
		From:    s.from,
		To:      []string{msg.Email},
		Subject: s.subject,
		Text: fmt.Sprintf("Your login code is %s. It is valid for %s (until %s).",
			msg.Code, util.FormatDuration(time.Until(msg.ExpiresAt)), msg.ExpiresAt.UTC().Format(time.RFC1123)),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if msg.RequestID != "" {
		req.Header.Set("X-Request-Id", msg.RequestID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "resend request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := errors.Errorf("resend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		// Client errors other than throttling will fail the same way on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return Permanent(err)
		}

		return err
	}

	s.logger.DebugContext(ctx, "[Resend] Login code sent",
		slog.String("request_id", msg.RequestID),
		slog.String("email", util.MaskEmail(msg.Email)),
	)

	return nil
}
