package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const linkTokenBytes = 32

// GenerateLinkToken returns a fresh share-link token: the plaintext (handed
// to the caller exactly once), the SHA-256 digest that is persisted, and a
// short prefix safe to display in listings. The plaintext carries 256 bits of
// CSPRNG entropy and is never derivable from document ids or sequences.
func GenerateLinkToken() (plain string, hash string, prefix string, err error) {
	raw := make([]byte, linkTokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("failed reading random source: %w", err)
	}

	plain = hex.EncodeToString(raw)
	hash = HashLinkToken(plain)
	prefix = plain[:8]
	return plain, hash, prefix, nil
}

func HashLinkToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
