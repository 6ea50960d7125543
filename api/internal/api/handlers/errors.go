package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HandleError maps request-level failures (payload shape, size) onto HTTP semantics.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErrs validator.ValidationErrors
		maxBytesErr    *http.MaxBytesError
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Detail: fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit),
		})
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: describeValidation(validationErrs)})
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid JSON payload"})
	default:
		// 🛡️ Zero-Trust: Log the real error internally, but return a generic 500
		slog.ErrorContext(r.Context(), "Unhandled request error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
	}
}

// TransformFailure converts a dispatcher error into a status and client message.
// Caller mistakes are 4xx; everything else is a 5xx with the cause interpolated.
func TransformFailure(direction domain.Direction, methodName string, err error) (int, string) {
	var unsupported *domain.UnsupportedMethodError
	switch {
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, fmt.Sprintf("Unsupported %s method: %s", direction.Verb(), unsupported.Name)
	case errors.Is(err, domain.ErrMissingPassphrase):
		return http.StatusBadRequest, fmt.Sprintf("Secret key is required for %s %s", methodName, direction.Verb())
	default:
		return http.StatusInternalServerError, fmt.Sprintf("%s failed: %s", capitalize(direction.Verb()), err.Error())
	}
}

func describeValidation(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
