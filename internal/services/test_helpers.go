package services

import (
	"context"

	"github.com/ettra/waitlist-api/internal/models"
)

// MockWaitlistRepository implements WaitlistRepository for testing
type MockWaitlistRepository struct {
	CreateFunc  func(ctx context.Context, email string) (*models.WaitlistEntry, error)
	CreateCalls []string
}

func (m *MockWaitlistRepository) Create(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	m.CreateCalls = append(m.CreateCalls, email)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email)
	}
	return nil, models.ErrInternalServer
}

// MockCaptchaVerifier implements CaptchaVerifier for testing
type MockCaptchaVerifier struct {
	EnabledValue bool
	VerifyFunc   func(ctx context.Context, token string) error
	VerifyCalls  int
}

func (m *MockCaptchaVerifier) Enabled() bool {
	return m.EnabledValue
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token string) error {
	m.VerifyCalls++
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	EnabledValue bool
	SendFunc     func(ctx context.Context, recipient string) SendResult
	SendCalls    []string
}

func (m *MockEmailSender) Enabled() bool {
	return m.EnabledValue
}

func (m *MockEmailSender) SendConfirmation(ctx context.Context, recipient string) SendResult {
	m.SendCalls = append(m.SendCalls, recipient)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, recipient)
	}
	return SendResult{Delivered: true, MessageID: "mock-message-id"}
}

func (m *MockEmailSender) SendTest(ctx context.Context, recipient string) SendResult {
	m.SendCalls = append(m.SendCalls, recipient)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, recipient)
	}
	return SendResult{Delivered: true, MessageID: "mock-message-id"}
}
