package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

var (
	probeAAD    = []byte("textcipher/health/v1")
	errMismatch = errors.New("managed key round trip mismatch")
)

type HealthHandler struct {
	crypto    domain.CryptoService
	algorithm string
}

func NewHealthHandler(crypto domain.CryptoService, algorithm string) *HealthHandler {
	return &HealthHandler{crypto: crypto, algorithm: algorithm}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check handles GET /health by sealing and opening a probe under the managed key.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	// 🛡️ SLA: Use a tight timeout for health checks
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Checks: map[string]string{"managed_key": "ok", "algorithm": h.algorithm},
	}
	status := http.StatusOK

	if err := h.selfTest(ctx); err != nil {
		// 🚨 FAIL: The process is up, but it cannot round-trip a token
		resp.Status = "degraded"
		resp.Checks["managed_key"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) selfTest(ctx context.Context) error {
	probe := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	token, err := h.crypto.Encrypt(ctx, probe, probeAAD)
	if err != nil {
		return err
	}
	plaintext, err := h.crypto.Decrypt(ctx, token, probeAAD)
	if err != nil {
		return err
	}
	if !bytes.Equal(plaintext, probe) {
		return errMismatch
	}
	return ctx.Err()
}
