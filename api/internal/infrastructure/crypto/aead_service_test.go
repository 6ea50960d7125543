package crypto_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/irgordon/textcipher/api/internal/core/domain"
	"github.com/irgordon/textcipher/api/internal/infrastructure/crypto"
)

// generateTestKey creates a random 256-bit key in hex
func generateTestKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32) // 256-bit
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("Failed to generate test key: %v", err)
	}
	return hex.EncodeToString(key)
}

func newService(t *testing.T, algorithm crypto.Algorithm) *crypto.AEADCryptoService {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	svc, err := crypto.NewCryptoService(key, algorithm)
	if err != nil {
		t.Fatalf("Failed to create crypto service: %v", err)
	}
	return svc
}

var algorithms = []crypto.Algorithm{crypto.AlgorithmAESGCM, crypto.AlgorithmChaCha20}

// ==============================================================================
// 1. Fundamental Correctness
// ==============================================================================

func TestAEAD_EncryptDecrypt_RoundTrip(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			svc := newService(t, alg)
			ctx := context.Background()
			plaintext := []byte("Grüße, 世界! 🔐")
			aad := []byte("textcipher/managed-key/v1")

			token, err := svc.Encrypt(ctx, plaintext, aad)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}

			decrypted, err := svc.Decrypt(ctx, token, aad)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}

			if string(decrypted) != string(plaintext) {
				t.Errorf("Round-trip failed: got %q, want %q", decrypted, plaintext)
			}
		})
	}
}

func TestAESCryptoService_FromHex(t *testing.T) {
	svc, err := crypto.NewAESCryptoService(generateTestKey(t))
	if err != nil {
		t.Fatalf("Failed to create crypto service: %v", err)
	}
	if svc.Algorithm() != crypto.AlgorithmAESGCM {
		t.Errorf("Expected %s, got %s", crypto.AlgorithmAESGCM, svc.Algorithm())
	}
}

// ==============================================================================
// 2. Token Wire Format
// ==============================================================================

func TestAEAD_Token_Is_Self_Describing(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)

	token, err := svc.Encrypt(context.Background(), []byte("hello"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("Token is not base64url: %v", err)
	}

	// version(1) + nonce(12) + plaintext(5) + tag(16)
	if len(raw) != 1+12+5+16 {
		t.Errorf("Unexpected token length %d", len(raw))
	}
	if raw[0] != 0x01 {
		t.Errorf("Expected AES-GCM version byte 0x01, got 0x%02x", raw[0])
	}
}

func TestAEAD_Rejects_Foreign_Algorithm_Token(t *testing.T) {
	key, _ := crypto.GenerateKey()
	keyCopy := append([]byte(nil), key...)

	aesSvc, err := crypto.NewCryptoService(key, crypto.AlgorithmAESGCM)
	if err != nil {
		t.Fatalf("aes: %v", err)
	}
	chachaSvc, err := crypto.NewCryptoService(keyCopy, crypto.AlgorithmChaCha20)
	if err != nil {
		t.Fatalf("chacha: %v", err)
	}

	token, err := chachaSvc.Encrypt(context.Background(), []byte("payload"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = aesSvc.Decrypt(context.Background(), token, nil)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken for a ChaCha20 token under AES-GCM, got %v", err)
	}
}

// ==============================================================================
// 3. AAD Binding Verification
// ==============================================================================

func TestAEAD_AAD_Tamper_Detection(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)
	ctx := context.Background()
	plaintext := []byte("SUPER_SECRET_TEXT")

	token, err := svc.Encrypt(ctx, plaintext, []byte("good-context"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// 🛡️ CRITICAL TEST: GCM must reject a different AAD
	_, err = svc.Decrypt(ctx, token, []byte("evil-context"))
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed with tampered AAD, got %v", err)
	}

	decrypted, err := svc.Decrypt(ctx, token, []byte("good-context"))
	if err != nil {
		t.Fatalf("Decrypt with correct AAD failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("AAD round-trip failed: got %q, want %q", decrypted, plaintext)
	}
}

// ==============================================================================
// 4. Nonce Uniqueness (Semantic Security)
// ==============================================================================

func TestAEAD_Nonce_Uniqueness(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)
	ctx := context.Background()

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := svc.Encrypt(ctx, []byte("identical-plaintext"), nil)
		if err != nil {
			t.Fatalf("Encrypt #%d failed: %v", i, err)
		}
		if tokens[tok] {
			t.Fatalf("SECURITY VIOLATION: Nonce reuse detected at iteration %d", i)
		}
		tokens[tok] = true
	}
}

// ==============================================================================
// 5. Key Validation
// ==============================================================================

func TestAEAD_Rejects_Short_Key(t *testing.T) {
	shortKey := strings.Repeat("ab", 16) // 128 bits
	if _, err := crypto.NewAESCryptoService(shortKey); err == nil {
		t.Fatal("SECURITY VIOLATION: Accepted 128-bit key")
	}
}

func TestAEAD_Rejects_Invalid_Hex(t *testing.T) {
	if _, err := crypto.NewAESCryptoService("not-a-valid-hex-string-at-all!!!"); err == nil {
		t.Fatal("SECURITY VIOLATION: Accepted non-hex key")
	}
}

func TestAEAD_Rejects_Empty_Key(t *testing.T) {
	if _, err := crypto.NewAESCryptoService(""); err == nil {
		t.Fatal("SECURITY VIOLATION: Accepted empty key")
	}
}

func TestAEAD_Zeroizes_Caller_Key(t *testing.T) {
	key, _ := crypto.GenerateKey()
	if _, err := crypto.NewCryptoService(key, crypto.AlgorithmChaCha20); err != nil {
		t.Fatalf("NewCryptoService failed: %v", err)
	}
	for i, b := range key {
		if b != 0 {
			t.Fatalf("Key byte %d not zeroized", i)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]crypto.Algorithm{
		"":                  crypto.AlgorithmAESGCM,
		"AES-256-GCM":       crypto.AlgorithmAESGCM,
		"chacha20-poly1305": crypto.AlgorithmChaCha20,
	}
	for in, want := range cases {
		got, err := crypto.ParseAlgorithm(in)
		if err != nil || got != want {
			t.Errorf("ParseAlgorithm(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := crypto.ParseAlgorithm("rot13"); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
}

// ==============================================================================
// 6. Ciphertext Tampering Detection
// ==============================================================================

func TestAEAD_Ciphertext_Tamper_Detection(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)
	ctx := context.Background()

	token, err := svc.Encrypt(ctx, []byte("sensitive-data"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// 🛡️ Flip one bit inside the sealed body, leaving the version byte intact
	raw, _ := base64.URLEncoding.DecodeString(token)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.URLEncoding.EncodeToString(raw)

	_, err = svc.Decrypt(ctx, tampered, nil)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestAEAD_Foreign_Key_Detection(t *testing.T) {
	ctx := context.Background()
	token, err := newService(t, crypto.AlgorithmAESGCM).Encrypt(ctx, []byte("data"), nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = newService(t, crypto.AlgorithmAESGCM).Decrypt(ctx, token, nil)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed under a different key, got %v", err)
	}
}

func TestAEAD_Malformed_Tokens(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)
	cases := map[string]string{
		"not base64": "%%%not-base64%%%",
		"too short":  base64.URLEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}),
		"empty":      "",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Decrypt(context.Background(), token, nil)
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

// ==============================================================================
// 7. Empty Plaintext Edge Case
// ==============================================================================

func TestAEAD_Empty_Plaintext(t *testing.T) {
	svc := newService(t, crypto.AlgorithmAESGCM)
	ctx := context.Background()

	token, err := svc.Encrypt(ctx, []byte{}, []byte("aad"))
	if err != nil {
		t.Fatalf("Encrypt empty plaintext failed: %v", err)
	}

	decrypted, err := svc.Decrypt(ctx, token, []byte("aad"))
	if err != nil {
		t.Fatalf("Decrypt empty plaintext failed: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("Expected empty plaintext, got %d bytes", len(decrypted))
	}
}
