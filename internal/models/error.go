package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Submission workflow errors
	ErrStorageNotConfigured = errors.New("storage not configured")
	ErrCaptchaFailed        = errors.New("captcha verification failed")
)
