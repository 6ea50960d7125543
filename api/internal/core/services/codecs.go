package services

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// ==============================================================================
// 1. Base64
// ==============================================================================

func encodeBase64(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func decodeBase64(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEncoding, err)
	}
	return raw, nil
}

// decodeUTF8 rejects byte sequences that cannot be handed back as text.
func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.ErrInvalidUTF8
	}
	return string(raw), nil
}

// ==============================================================================
// 2. Passphrase keystream XOR
// ==============================================================================

// passphraseKeystream derives K = SHA-256(passphrase).
func passphraseKeystream(passphrase string) [sha256.Size]byte {
	return sha256.Sum256([]byte(passphrase))
}

// xorKeystream XORs the UTF-8 bytes of data with the repeating keystream.
// Operating on bytes rather than code points keeps encode and decode exact inverses.
func xorKeystream(data []byte, key [sha256.Size]byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
