package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrSignatureMismatch marks a notification that failed authenticity
// verification. It is deliberately opaque: failure paths must not carry any
// part of the signed payload.
var ErrSignatureMismatch = errors.New("webhook: signature verification failed")

// Verifier authenticates inbound notifications against the shared signing
// secret. AllowUnsigned mirrors the processor sample's development fallback
// and is rejected by config in production.
type Verifier struct {
	Secret        string
	AllowUnsigned bool
}

// ComputeSignature returns the hex HMAC-SHA256 of body under the secret.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the expected signature over the exact raw bytes and
// compares it in constant time against the presented header. Any missing or
// malformed header fails closed.
func (v Verifier) Verify(body []byte, signatureHeader string) error {
	if strings.TrimSpace(v.Secret) == "" {
		if v.AllowUnsigned {
			return nil
		}
		return ErrSignatureMismatch
	}
	provided := strings.TrimSpace(signatureHeader)
	if provided == "" {
		return ErrSignatureMismatch
	}
	expected := ComputeSignature(v.Secret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return ErrSignatureMismatch
	}
	return nil
}
