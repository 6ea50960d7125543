package domain

import "context"

// CryptoService defines the hardened contract for the managed-key cipher.
// It enforces AEAD (Authenticated Encryption with Associated Data).
type CryptoService interface {
	// Encrypt transforms plaintext into a self-describing authenticated token.
	// 'associatedData' (AAD) binds the token to a context (e.g., the method name).
	Encrypt(ctx context.Context, plaintext []byte, associatedData []byte) (string, error)

	// Decrypt verifies authenticity and returns the original plaintext.
	// Tampered tokens, foreign keys or a mismatched AAD all fail with ErrAuthenticationFailed.
	Decrypt(ctx context.Context, token string, associatedData []byte) ([]byte, error)
}
