package services

import "github.com/seguro/backend/internal/models"

// Classification policy. Pure table lookups so every caller agrees on what a
// classification implies; nothing here touches the database.

// Shareable reports whether documents of the given classification may be
// offered through share links or grants. Restricted documents never are;
// only the owner, after passing the document-password gate, reads them.
func Shareable(c models.Classification) bool {
	switch c {
	case models.ClassificationPublic, models.ClassificationPrivate, models.ClassificationConfidential:
		return true
	default:
		return false
	}
}

// RequiresSecondaryAuth reports whether reading the document demands the
// per-document password check on top of an active grant.
func RequiresSecondaryAuth(c models.Classification) bool {
	return c == models.ClassificationRestricted
}

// RequiresTransform reports whether uploaded content must pass through the
// watermark transform before it is stored.
func RequiresTransform(c models.Classification) bool {
	return c == models.ClassificationConfidential
}

// AnonymousReadable reports whether the document is served to
// unauthenticated callers via its permanent public token.
func AnonymousReadable(c models.Classification) bool {
	return c == models.ClassificationPublic
}
