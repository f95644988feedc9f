package models

import (
	"strings"
	"time"
)

// WaitlistEntry represents a single signup on the product waitlist.
// Email uniqueness is enforced by the database.
type WaitlistEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail lower-cases and trims an email address before storage,
// so "Foo@Bar.com " and "foo@bar.com" count as the same signup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
