package handlers

import (
	"net/http"

	"github.com/ettra/waitlist-api/internal/services"
	pkghttp "github.com/ettra/waitlist-api/pkg/http"
)

// EmailTestHandler exposes an ad hoc send endpoint for verifying the
// email provider wiring. Diagnostic only; no correctness guarantees.
type EmailTestHandler struct {
	mailer        services.EmailSender
	testRecipient string
}

// NewEmailTestHandler creates a new EmailTestHandler
func NewEmailTestHandler(mailer services.EmailSender, testRecipient string) *EmailTestHandler {
	return &EmailTestHandler{
		mailer:        mailer,
		testRecipient: testRecipient,
	}
}

// Status handles GET /api/email/test
func (h *EmailTestHandler) Status(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Email test endpoint ready. Use POST to send.",
	})
}

// Send handles POST /api/email/test
func (h *EmailTestHandler) Send(w http.ResponseWriter, r *http.Request) {
	if !h.mailer.Enabled() {
		pkghttp.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "Email provider not configured",
		})
		return
	}

	if h.testRecipient == "" {
		pkghttp.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "EMAIL_TEST_RECIPIENT not configured",
		})
		return
	}

	result := h.mailer.SendTest(r.Context(), h.testRecipient)
	if !result.Delivered {
		pkghttp.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"message": result.Reason,
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"messageId": result.MessageID,
	})
}
