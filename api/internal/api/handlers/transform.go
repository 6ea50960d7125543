package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so client messages match the wire
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ==============================================================================
// 1. Request / Response Payloads
// ==============================================================================

// EncryptRequest: text must be present but may be empty.
type EncryptRequest struct {
	Text      *string `json:"text" validate:"required,max=1048576"`
	Method    string  `json:"method" validate:"max=64"`
	SecretKey string  `json:"secret_key" validate:"max=4096"`
}

type DecryptRequest struct {
	EncryptedText *string `json:"encrypted_text" validate:"required,max=1048576"`
	Method        string  `json:"method" validate:"max=64"`
	SecretKey     string  `json:"secret_key" validate:"max=4096"`
}

type EncryptResponse struct {
	OriginalText  string `json:"original_text"`
	EncryptedText string `json:"encrypted_text"`
	Method        string `json:"method"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

type DecryptResponse struct {
	EncryptedText string `json:"encrypted_text"`
	DecryptedText string `json:"decrypted_text"`
	Method        string `json:"method"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

type MethodInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	RequiresKey bool     `json:"requires_key"`
	Aliases     []string `json:"aliases"`
}

type MethodsResponse struct {
	Methods []MethodInfo `json:"methods"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type TransformHandler struct {
	Service domain.Transformer
	Logger  *slog.Logger
	Version string
}

func NewTransformHandler(service domain.Transformer, logger *slog.Logger, version string) *TransformHandler {
	return &TransformHandler{
		Service: service,
		Logger:  logger,
		Version: version,
	}
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// Root handles GET /
func (h *TransformHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Encryption/Decryption API",
		Version: h.Version,
		Endpoints: map[string]string{
			"encrypt": "/encrypt",
			"decrypt": "/decrypt",
			"methods": "/methods",
			"docs":    "/methods",
			"health":  "/health",
			"metrics": "/metrics",
			"events":  "/events",
			"ws":      "/ws",
		},
	})
}

// Methods handles GET /methods
func (h *TransformHandler) Methods(w http.ResponseWriter, r *http.Request) {
	resp := MethodsResponse{Methods: make([]MethodInfo, 0, len(domain.Methods()))}
	for _, m := range domain.Methods() {
		resp.Methods = append(resp.Methods, MethodInfo{
			Name:        m.String(),
			Description: m.Description(),
			RequiresKey: m.RequiresKey(),
			Aliases:     m.Aliases(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Encrypt handles POST /encrypt
func (h *TransformHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	res, status := RunTransform(r.Context(), h.Service, domain.DirectionEncode, req.Method, *req.Text, req.SecretKey)
	if !res.Succeeded {
		writeJSON(w, status, ErrorResponse{Detail: res.Message})
		return
	}

	writeJSON(w, http.StatusOK, EncryptResponse{
		OriginalText:  *req.Text,
		EncryptedText: res.Output,
		Method:        res.Method.String(),
		Success:       true,
		Message:       res.Message,
	})
}

// Decrypt handles POST /decrypt
func (h *TransformHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	res, status := RunTransform(r.Context(), h.Service, domain.DirectionDecode, req.Method, *req.EncryptedText, req.SecretKey)
	if !res.Succeeded {
		writeJSON(w, status, ErrorResponse{Detail: res.Message})
		return
	}

	writeJSON(w, http.StatusOK, DecryptResponse{
		EncryptedText: *req.EncryptedText,
		DecryptedText: res.Output,
		Method:        res.Method.String(),
		Success:       true,
		Message:       res.Message,
	})
}

// RunTransform parses the wire method, dispatches, and reports the outcome with its HTTP status.
// It is shared by the REST handlers and the WebSocket session.
func RunTransform(
	ctx context.Context,
	svc domain.Transformer,
	direction domain.Direction,
	methodName, payload, passphrase string,
) (domain.TransformResult, int) {
	method, err := domain.ParseMethod(methodName)
	if err != nil {
		status, msg := TransformFailure(direction, domain.NormalizeMethodName(methodName), err)
		return domain.TransformResult{Message: msg}, status
	}

	out, err := svc.Transform(ctx, domain.TransformRequest{
		Direction:  direction,
		Method:     method,
		Payload:    payload,
		Passphrase: passphrase,
	})
	if err != nil {
		status, msg := TransformFailure(direction, method.String(), err)
		return domain.TransformResult{Method: method, Message: msg}, status
	}

	verb := "encrypted"
	if direction == domain.DirectionDecode {
		verb = "decrypted"
	}
	return domain.TransformResult{
		Output:    out,
		Method:    method,
		Succeeded: true,
		Message:   "Text " + verb + " successfully",
	}, http.StatusOK
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
