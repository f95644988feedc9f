package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ettra/waitlist-api/internal/models"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
)

// WaitlistRepository is the durable-storage collaborator for signups
type WaitlistRepository interface {
	Create(ctx context.Context, email string) (*models.WaitlistEntry, error)
}

// Submission carries one inbound waitlist signup plus the request
// metadata used for security logging.
type Submission struct {
	Email        string
	CaptchaToken string
	IPAddress    string
	UserAgent    string
}

// WaitlistService turns one submission into exactly one durable
// waitlist record. Stages run strictly in order: captcha verification
// (when enabled), insert, then confirmation email. The insert is the
// only required side effect; email failure never changes the outcome.
type WaitlistService struct {
	repo    WaitlistRepository // nil when storage is unconfigured
	captcha CaptchaVerifier
	mailer  EmailSender
	events  *pkglogger.SecurityLogger
	logger  *slog.Logger
}

// NewWaitlistService creates a new WaitlistService. A nil repo models a
// deployment without storage configured; every submission then fails
// with ErrStorageNotConfigured before reaching any other stage's side
// effects.
func NewWaitlistService(
	repo WaitlistRepository,
	captcha CaptchaVerifier,
	mailer EmailSender,
	events *pkglogger.SecurityLogger,
	logger *slog.Logger,
) *WaitlistService {
	return &WaitlistService{
		repo:    repo,
		captcha: captcha,
		mailer:  mailer,
		events:  events,
		logger:  logger,
	}
}

// Join processes one admitted, validated submission.
// Error mapping for the caller: ErrStorageNotConfigured (503),
// ErrCaptchaFailed (400), ErrConflict (409), anything else (500).
func (s *WaitlistService) Join(ctx context.Context, sub Submission) (*models.WaitlistEntry, error) {
	if s.repo == nil {
		return nil, models.ErrStorageNotConfigured
	}

	if s.captcha.Enabled() {
		if err := s.captcha.Verify(ctx, sub.CaptchaToken); err != nil {
			s.events.Log(pkglogger.SecurityEvent{
				Type:      pkglogger.EventFailedAuthentication,
				Endpoint:  "/api/waitlist",
				IPAddress: sub.IPAddress,
				UserAgent: sub.UserAgent,
				Details: map[string]any{
					"stage": "captcha",
				},
			})
			return nil, err
		}
	} else {
		s.logger.Warn("captcha secret not configured, skipping server-side verification")
	}

	email := models.NormalizeEmail(sub.Email)

	entry, err := s.repo.Create(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("waitlist insert failed",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil, fmt.Errorf("waitlist insert: %w", err)
	}

	// Best-effort confirmation; the record already exists, so whatever
	// happens here the submission has succeeded.
	if s.mailer.Enabled() {
		result := s.mailer.SendConfirmation(ctx, entry.Email)
		if !result.Delivered {
			s.logger.Warn("confirmation email not delivered",
				slog.String("email", pkglogger.SanitizedEmail(entry.Email)),
				slog.String("reason", result.Reason))
		}
	} else {
		s.logger.Warn("email provider not configured, skipping confirmation email",
			slog.String("email", pkglogger.SanitizedEmail(entry.Email)))
	}

	return entry, nil
}
