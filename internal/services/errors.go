package services

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP status
// codes and user-safe messages; wrapped causes stay server-side.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrPolicyViolation = errors.New("classification policy violation")

	// Share link activation failures, checked in this order.
	ErrTokenNotFound      = errors.New("share link token not found")
	ErrLinkRevoked        = errors.New("share link revoked")
	ErrLinkExpired        = errors.New("share link expired")
	ErrLinkExhausted      = errors.New("share link exhausted")
	ErrEmailNotAuthorized = errors.New("email not authorized for share link")
	ErrRecipientExhausted = errors.New("recipient allowance exhausted")

	ErrSecretMismatch = errors.New("restricted password mismatch")
)
