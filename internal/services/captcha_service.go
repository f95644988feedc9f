package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ettra/waitlist-api/internal/config"
	"github.com/ettra/waitlist-api/internal/models"
)

// CaptchaVerifier checks a client-supplied captcha token against the
// verification provider. Enabled is resolved once at construction so
// the workflow has a single skip-vs-run branch per submission.
type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token string) error
}

// HCaptchaVerifier verifies tokens against hCaptcha's siteverify API
type HCaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewHCaptchaVerifier creates a verifier from config. With no secret
// configured, Enabled reports false and Verify is never consulted.
func NewHCaptchaVerifier(cfg config.CaptchaConfig, logger *slog.Logger) *HCaptchaVerifier {
	return &HCaptchaVerifier{
		secret:    cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

func (v *HCaptchaVerifier) Enabled() bool {
	return v.secret != ""
}

// siteverifyResponse is the provider's JSON reply
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the provider. Any failure, including
// transport errors and timeouts, maps to models.ErrCaptchaFailed: when
// verification is enabled, an unverifiable submission is rejected.
func (v *HCaptchaVerifier) Verify(ctx context.Context, token string) error {
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: building verification request: %v", models.ErrCaptchaFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("captcha verification request failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", models.ErrCaptchaFailed, err)
	}
	defer resp.Body.Close()

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Error("captcha verification response malformed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", models.ErrCaptchaFailed, err)
	}

	if !result.Success {
		v.logger.Warn("captcha verification rejected token",
			slog.String("error_codes", strings.Join(result.ErrorCodes, ",")))
		return models.ErrCaptchaFailed
	}

	return nil
}
