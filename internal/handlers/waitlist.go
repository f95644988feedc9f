package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ettra/waitlist-api/internal/models"
	"github.com/ettra/waitlist-api/internal/services"
	pkghttp "github.com/ettra/waitlist-api/pkg/http"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
)

// EndpointWaitlist is the endpoint identifier used for rate limit keys
// and security events.
const EndpointWaitlist = "/api/waitlist"

// WaitlistServiceInterface defines the submission workflow entrypoint
type WaitlistServiceInterface interface {
	Join(ctx context.Context, sub services.Submission) (*models.WaitlistEntry, error)
}

// AdmissionServiceInterface defines request admission control
type AdmissionServiceInterface interface {
	Admit(endpoint string, r *http.Request) services.Decision
}

// WaitlistHandler handles waitlist signup requests
type WaitlistHandler struct {
	service   WaitlistServiceInterface
	admission AdmissionServiceInterface
	events    *pkglogger.SecurityLogger
}

// NewWaitlistHandler creates a new WaitlistHandler
func NewWaitlistHandler(service WaitlistServiceInterface, admission AdmissionServiceInterface, events *pkglogger.SecurityLogger) *WaitlistHandler {
	return &WaitlistHandler{
		service:   service,
		admission: admission,
		events:    events,
	}
}

// JoinWaitlistRequest represents the signup request body
type JoinWaitlistRequest struct {
	Email        string `json:"email" validate:"required,max=254"`
	CaptchaToken string `json:"captchaToken" validate:"required"`
}

// Join handles POST /api/waitlist. Stages run strictly in order:
// admission, validation, then the service workflow (storage check,
// captcha, insert, best-effort email).
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	decision := h.admission.Admit(EndpointWaitlist, r)
	if !decision.Allowed {
		if decision.Reason == services.DenyRateLimited {
			pkghttp.WriteRateLimited(w, decision.RetryAfter)
			return
		}
		pkghttp.WriteBadRequest(w, "Invalid request")
		return
	}

	var req JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.events.Log(pkglogger.SecurityEvent{
			Type:      pkglogger.EventInvalidRequest,
			Endpoint:  EndpointWaitlist,
			IPAddress: decision.ClientIP,
			UserAgent: r.UserAgent(),
			Details: map[string]any{
				"error": err.Error(),
			},
		})
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	entry, err := h.service.Join(r.Context(), services.Submission{
		Email:        req.Email,
		CaptchaToken: req.CaptchaToken,
		IPAddress:    decision.ClientIP,
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrStorageNotConfigured):
			pkghttp.WriteServiceUnavailable(w, "Database not configured. Please contact support.")
		case errors.Is(err, models.ErrCaptchaFailed):
			pkghttp.WriteBadRequest(w, "Captcha verification failed. Please try again.")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Email already registered")
		default:
			pkghttp.WriteInternalError(w, "Failed to add email to waitlist")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Successfully added to waitlist", entry)
}
