package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/ettra/waitlist-api/internal/config"
	pkglogger "github.com/ettra/waitlist-api/pkg/logger"
)

// SendResult is the outcome of one email dispatch. Delivery failure is
// data, not an error: the submission workflow logs it and moves on, so
// a missed confirmation can never undo a successful signup.
type SendResult struct {
	Delivered bool
	MessageID string
	Reason    string
}

// EmailSender dispatches waitlist emails. Enabled is resolved once at
// construction from the provider credentials.
type EmailSender interface {
	Enabled() bool
	SendConfirmation(ctx context.Context, recipient string) SendResult
	SendTest(ctx context.Context, recipient string) SendResult
}

// SESEmailSender sends email through AWS SES
type SESEmailSender struct {
	client      *ses.Client
	fromAddress string
	enabled     bool
	logger      *slog.Logger
}

// NewSESEmailSender creates the SES sender. When the region or sender
// address is missing the service comes up disabled rather than failing:
// confirmation email is a best-effort stage.
func NewSESEmailSender(ctx context.Context, cfg config.EmailConfig, logger *slog.Logger) (*SESEmailSender, error) {
	if !cfg.Enabled() {
		logger.Warn("email provider not configured, confirmation emails disabled")
		return &SESEmailSender{enabled: false, logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailSender{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		enabled:     true,
		logger:      logger,
	}, nil
}

func (s *SESEmailSender) Enabled() bool {
	return s.enabled
}

// SendConfirmation sends the waitlist welcome message
func (s *SESEmailSender) SendConfirmation(ctx context.Context, recipient string) SendResult {
	htmlBody := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #1A1021;">
  <h1>You're on the list!</h1>
  <p>Thanks for joining the waitlist. We'll email you the moment early access opens up.</p>
  <p>No action needed on your side. If you didn't sign up, you can safely ignore this message.</p>
  <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply.</p>
</body>
</html>
`

	textBody := `You're on the list!

Thanks for joining the waitlist. We'll email you the moment early access opens up.

No action needed on your side. If you didn't sign up, you can safely ignore this message.

This is an automated message. Please do not reply.
`

	return s.send(ctx, recipient, "You're on the waitlist", textBody, htmlBody, "waitlist-confirmation")
}

// SendTest sends a short diagnostic message for the email test endpoint
func (s *SESEmailSender) SendTest(ctx context.Context, recipient string) SendResult {
	return s.send(ctx, recipient,
		"Waitlist API email test",
		"This is a test message from the waitlist API.",
		"<strong>This is a test message from the waitlist API.</strong>",
		"email-test")
}

func (s *SESEmailSender) send(ctx context.Context, recipient, subject, textBody, htmlBody, category string) SendResult {
	if !s.enabled {
		return SendResult{Delivered: false, Reason: "email provider not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
		Tags: []types.MessageTag{
			{Name: aws.String("category"), Value: aws.String(category)},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Warn("email send failed",
			slog.String("recipient", pkglogger.SanitizedEmail(recipient)),
			slog.String("category", category),
			slog.Any("error", err))
		return SendResult{Delivered: false, Reason: err.Error()}
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("email sent",
		slog.String("recipient", pkglogger.SanitizedEmail(recipient)),
		slog.String("category", category),
		slog.String("message_id", messageID))

	return SendResult{Delivered: true, MessageID: messageID}
}
