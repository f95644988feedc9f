package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ettra/waitlist-api/internal/handlers"
	"github.com/ettra/waitlist-api/internal/models"
	"github.com/ettra/waitlist-api/internal/ratelimit"
	"github.com/ettra/waitlist-api/internal/services"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWaitlistService implements handlers.WaitlistServiceInterface
type stubWaitlistService struct {
	JoinFunc func(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error)
	LastSub  *services.Submission
}

func (s *stubWaitlistService) Join(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error) {
	s.LastSub = &sub
	if s.JoinFunc != nil {
		return s.JoinFunc(ctx, sub)
	}
	return &models.WaitlistEntry{
		ID:        "11111111-2222-3333-4444-555555555555",
		Email:     models.NormalizeEmail(sub.Email),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func newTestHandler(service handlers.WaitlistServiceInterface, waitlistMax int) *handlers.WaitlistHandler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	events := pkglogger.NewSecurityLogger(logger)
	limiter := ratelimit.New(ratelimit.Policy{MaxRequests: 30, Window: time.Minute}, 5*time.Minute, logger)
	limiter.SetPolicy(handlers.EndpointWaitlist, ratelimit.Policy{MaxRequests: waitlistMax, Window: time.Minute})
	admission := services.NewAdmissionService(limiter, events)
	return handlers.NewWaitlistHandler(service, admission, events)
}

func postWaitlist(h *handlers.WaitlistHandler, body string, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/waitlist", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	w := httptest.NewRecorder()
	h.Join(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJoin_Success(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"Foo@Bar.com ","captchaToken":"tok"}`, "203.0.113.7")

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "Successfully added to waitlist", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "foo@bar.com", data["email"])

	// Request metadata flows into the submission
	assert.Equal(t, "203.0.113.7", service.LastSub.IPAddress)
}

func TestJoin_SuspiciousClientRejected(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com","captchaToken":"tok"}`, "127.0.0.1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, service.LastSub, "workflow must not run for rejected clients")
}

func TestJoin_RateLimited(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 2)

	body := `{"email":"a@b.com","captchaToken":"tok"}`
	assert.Equal(t, http.StatusCreated, postWaitlist(h, body, "203.0.113.7").Code)
	assert.Equal(t, http.StatusCreated, postWaitlist(h, body, "203.0.113.7").Code)

	w := postWaitlist(h, body, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	resp := decodeResponse(t, w)
	retryAfter := int(resp["retryAfter"].(float64))
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 60)

	// A different client is unaffected
	assert.Equal(t, http.StatusCreated, postWaitlist(h, body, "203.0.113.8").Code)
}

func TestJoin_MalformedBody(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{not json`, "203.0.113.7")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, service.LastSub)
}

func TestJoin_MissingEmail(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"captchaToken":"tok"}`, "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, service.LastSub)
}

func TestJoin_MissingCaptchaToken(t *testing.T) {
	service := &stubWaitlistService{}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com"}`, "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, service.LastSub)
}

func TestJoin_StorageNotConfigured(t *testing.T) {
	service := &stubWaitlistService{
		JoinFunc: func(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error) {
			return nil, models.ErrStorageNotConfigured
		},
	}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com","captchaToken":"tok"}`, "203.0.113.7")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "Database not configured. Please contact support.", body["error"])
}

func TestJoin_CaptchaFailed(t *testing.T) {
	service := &stubWaitlistService{
		JoinFunc: func(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error) {
			return nil, models.ErrCaptchaFailed
		},
	}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com","captchaToken":"bad"}`, "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "Captcha verification failed. Please try again.", body["error"])
}

func TestJoin_DuplicateEmail(t *testing.T) {
	service := &stubWaitlistService{
		JoinFunc: func(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error) {
			return nil, models.ErrConflict
		},
	}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com","captchaToken":"tok"}`, "203.0.113.7")

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "Email already registered", body["error"])
}

func TestJoin_StorageFailure(t *testing.T) {
	service := &stubWaitlistService{
		JoinFunc: func(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error) {
			return nil, models.ErrInternalServer
		},
	}
	h := newTestHandler(service, 5)

	w := postWaitlist(h, `{"email":"a@b.com","captchaToken":"tok"}`, "203.0.113.7")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeResponse(t, w)
	assert.Equal(t, "Failed to add email to waitlist", body["error"])
}
