package auth

import "crypto/subtle"

// CredentialVerifier checks a caller-supplied credential. Implementations
// can be swapped without touching handler logic.
type CredentialVerifier interface {
	Verify(token string) bool
}

// StaticKey verifies against a single process-wide shared secret.
type StaticKey string

func (k StaticKey) Verify(token string) bool {
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1
}
