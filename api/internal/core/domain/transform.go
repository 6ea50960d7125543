package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method is the closed set of text transforms the service knows about.
// The zero value is not a valid method.
type Method int

const (
	MethodBase64 Method = iota + 1
	MethodManagedKey
	MethodXORPassphrase
)

// Methods lists every transform in the order they are advertised on GET /methods.
func Methods() []Method {
	return []Method{MethodBase64, MethodManagedKey, MethodXORPassphrase}
}

// String returns the canonical wire name.
func (m Method) String() string {
	switch m {
	case MethodBase64:
		return "base64"
	case MethodManagedKey:
		return "managed-key"
	case MethodXORPassphrase:
		return "xor-passphrase"
	default:
		return "unknown"
	}
}

// Description is the human readable line shown on GET /methods.
func (m Method) Description() string {
	switch m {
	case MethodBase64:
		return "Base64 encoding/decoding"
	case MethodManagedKey:
		return "Authenticated symmetric encryption under the server-managed key"
	case MethodXORPassphrase:
		return "XOR cipher keyed by the SHA-256 digest of a caller passphrase"
	default:
		return ""
	}
}

// RequiresKey reports whether the caller must supply a passphrase.
func (m Method) RequiresKey() bool {
	return m == MethodXORPassphrase
}

// Aliases are the legacy names older clients still send.
func (m Method) Aliases() []string {
	switch m {
	case MethodManagedKey:
		return []string{"fernet"}
	case MethodXORPassphrase:
		return []string{"aes"}
	default:
		return []string{}
	}
}

// ParseMethod maps a wire name (case-insensitive, aliases included) onto a Method.
// Unknown names fail with ErrUnsupportedMethod.
func ParseMethod(name string) (Method, error) {
	normalized := NormalizeMethodName(name)
	for _, m := range Methods() {
		if normalized == m.String() {
			return m, nil
		}
		for _, alias := range m.Aliases() {
			if normalized == alias {
				return m, nil
			}
		}
	}
	return 0, &UnsupportedMethodError{Name: normalized}
}

// NormalizeMethodName trims and lower-cases a wire method name.
// An empty name selects base64, matching the historical default.
func NormalizeMethodName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return MethodBase64.String()
	}
	return normalized
}

// Direction selects encode (encrypt) or decode (decrypt).
type Direction int

const (
	DirectionEncode Direction = iota + 1
	DirectionDecode
)

func (d Direction) String() string {
	switch d {
	case DirectionEncode:
		return "encode"
	case DirectionDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Verb is the word used in client facing messages ("encryption", "decryption").
func (d Direction) Verb() string {
	if d == DirectionDecode {
		return "decryption"
	}
	return "encryption"
}

// ParseDirection accepts both the transform vocabulary and the HTTP one.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encode", "encrypt":
		return DirectionEncode, true
	case "decode", "decrypt":
		return DirectionDecode, true
	default:
		return 0, false
	}
}

// TransformRequest is one unit of work for the dispatcher.
// Passphrase is only consulted for MethodXORPassphrase.
type TransformRequest struct {
	Direction  Direction
	Method     Method
	Payload    string
	Passphrase string
}

// TransformResult is what the boundary reports back to the caller.
type TransformResult struct {
	Output    string
	Method    Method
	Succeeded bool
	Message   string
}

// Transformer is the dispatcher contract consumed by the HTTP and WebSocket handlers.
type Transformer interface {
	Transform(ctx context.Context, req TransformRequest) (string, error)
}

// TransformEvent is an audit record of a single transform.
// 🛡️ Privacy: it never carries payloads, outputs or passphrases.
type TransformEvent struct {
	ID          uuid.UUID `json:"id"`
	TraceID     string    `json:"trace_id,omitempty"`
	Direction   string    `json:"direction"`
	Method      string    `json:"method"`
	Succeeded   bool      `json:"succeeded"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	InputBytes  int       `json:"input_bytes"`
	OutputBytes int       `json:"output_bytes"`
	At          time.Time `json:"at"`
}
