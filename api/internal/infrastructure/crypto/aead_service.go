package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// KeySize is the managed key length for both supported AEADs.
const KeySize = 32

// Algorithm names the AEAD backing the managed key.
type Algorithm string

const (
	AlgorithmAESGCM   Algorithm = "aes-256-gcm"
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// Token version bytes. The first byte of every decoded token names the AEAD that sealed it.
const (
	versionAESGCM   byte = 0x01
	versionChaCha20 byte = 0x02
)

// ParseAlgorithm accepts the configured cipher name. Empty selects AES-256-GCM.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", AlgorithmAESGCM:
		return AlgorithmAESGCM, nil
	case AlgorithmChaCha20:
		return AlgorithmChaCha20, nil
	default:
		return "", fmt.Errorf("crypto: unknown algorithm %q", name)
	}
}

var _ domain.CryptoService = (*AEADCryptoService)(nil)

// AEADCryptoService seals and opens managed-key tokens.
// It is immutable after construction and safe for concurrent use.
type AEADCryptoService struct {
	// 🛡️ Optimized: Pre-calculate the AEAD interface to reduce allocations
	aead      cipher.AEAD
	version   byte
	algorithm Algorithm
}

// GenerateKey returns a fresh random managed key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("crypto: key generation failure: %w", err)
	}
	return key, nil
}

// NewAESCryptoService builds an AES-256-GCM service from a hex encoded key.
func NewAESCryptoService(hexKey string) (*AEADCryptoService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid key encoding: %w", err)
	}
	return NewCryptoService(key, AlgorithmAESGCM)
}

// NewCryptoService builds the service for the given algorithm.
// The caller's key slice is zeroized before returning.
func NewCryptoService(key []byte, algorithm Algorithm) (*AEADCryptoService, error) {
	// 🛡️ Privacy Tip: Manually zeroize the temporary key slice after use
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	if len(key) != KeySize {
		return nil, errors.New("crypto: key must be 32 bytes")
	}

	var (
		aead    cipher.AEAD
		version byte
		err     error
	)
	switch algorithm {
	case AlgorithmAESGCM:
		block, blockErr := aes.NewCipher(key)
		if blockErr != nil {
			return nil, fmt.Errorf("crypto: block cipher failure: %w", blockErr)
		}
		aead, err = cipher.NewGCM(block)
		version = versionAESGCM
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key)
		version = versionChaCha20
	default:
		return nil, fmt.Errorf("crypto: unknown algorithm %q", algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("crypto: AEAD failure: %w", err)
	}

	return &AEADCryptoService{aead: aead, version: version, algorithm: algorithm}, nil
}

// Algorithm reports the AEAD in use.
func (s *AEADCryptoService) Algorithm() Algorithm {
	return s.algorithm
}

// Encrypt returns base64url(version || nonce || ciphertext || tag).
func (s *AEADCryptoService) Encrypt(ctx context.Context, plaintext []byte, associatedData []byte) (string, error) {
	ns := s.aead.NonceSize()

	// 🛡️ Memory Safety: Pre-allocate the exact size needed
	// Capacity = version + nonce + plaintext + tag
	out := make([]byte, 1+ns, 1+ns+len(plaintext)+s.aead.Overhead())
	out[0] = s.version
	nonce := out[1 : 1+ns]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce generation failure: %w", err)
	}

	sealed := s.aead.Seal(out, nonce, plaintext, associatedData)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt verifies the token and returns the plaintext.
// Structural problems fail with domain.ErrInvalidToken, tag mismatches with domain.ErrAuthenticationFailed.
func (s *AEADCryptoService) Decrypt(ctx context.Context, token string, associatedData []byte) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode failure: %v", domain.ErrInvalidToken, err)
	}

	ns := s.aead.NonceSize()
	if len(data) < 1+ns+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: token too short", domain.ErrInvalidToken)
	}
	if data[0] != s.version {
		return nil, fmt.Errorf("%w: unsupported token version 0x%02x", domain.ErrInvalidToken, data[0])
	}

	nonce, actualCiphertext := data[1:1+ns], data[1+ns:]

	// 🛡️ AEAD Verification
	// A foreign key, a flipped bit or a different AAD all land here.
	plaintext, err := s.aead.Open(nil, nonce, actualCiphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: integrity violation - potential tampering detected", domain.ErrAuthenticationFailed)
	}

	return plaintext, nil
}
