package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/irgordon/textcipher/api/internal/core/domain"
)

// ManagedKeyAAD domain-separates managed-key tokens from anything else sealed under the same key.
var ManagedKeyAAD = []byte("textcipher/managed-key/v1")

// TransformObserver is notified after every transform, successful or not.
type TransformObserver interface {
	ObserveTransform(ctx context.Context, event domain.TransformEvent)
}

var _ domain.Transformer = (*TransformService)(nil)

// TransformService dispatches a TransformRequest to exactly one stateless transform.
// The managed-key cipher is injected once and only read afterwards.
type TransformService struct {
	cryptoService domain.CryptoService
	logger        *slog.Logger
	observers     []TransformObserver
	now           func() time.Time
}

func NewTransformService(
	crypto domain.CryptoService,
	logger *slog.Logger,
	observers ...TransformObserver,
) *TransformService {
	return &TransformService{
		cryptoService: crypto,
		logger:        logger,
		observers:     observers,
		now:           time.Now,
	}
}

// Transform runs req and returns the encoded or decoded text.
// Payload failures wrap one of the domain transform sentinels; an unknown
// Direction is a programming error and is reported as such.
func (s *TransformService) Transform(ctx context.Context, req domain.TransformRequest) (string, error) {
	out, err := s.dispatch(ctx, req)
	s.record(ctx, req, out, err)
	return out, err
}

func (s *TransformService) dispatch(ctx context.Context, req domain.TransformRequest) (string, error) {
	if req.Direction != domain.DirectionEncode && req.Direction != domain.DirectionDecode {
		return "", fmt.Errorf("transform: unknown direction %d", req.Direction)
	}

	switch req.Method {
	case domain.MethodBase64:
		if req.Direction == domain.DirectionEncode {
			return encodeBase64(req.Payload), nil
		}
		raw, err := decodeBase64(req.Payload)
		if err != nil {
			return "", err
		}
		return decodeUTF8(raw)

	case domain.MethodManagedKey:
		if req.Direction == domain.DirectionEncode {
			token, err := s.cryptoService.Encrypt(ctx, []byte(req.Payload), ManagedKeyAAD)
			if err != nil {
				return "", fmt.Errorf("managed-key: %w", err)
			}
			return token, nil
		}
		plaintext, err := s.cryptoService.Decrypt(ctx, req.Payload, ManagedKeyAAD)
		if err != nil {
			return "", err
		}
		return decodeUTF8(plaintext)

	case domain.MethodXORPassphrase:
		if req.Passphrase == "" {
			return "", domain.ErrMissingPassphrase
		}
		key := passphraseKeystream(req.Passphrase)
		if req.Direction == domain.DirectionEncode {
			return encodeBase64(string(xorKeystream([]byte(req.Payload), key))), nil
		}
		raw, err := decodeBase64(req.Payload)
		if err != nil {
			return "", err
		}
		return decodeUTF8(xorKeystream(raw, key))

	default:
		return "", &domain.UnsupportedMethodError{Name: req.Method.String()}
	}
}

func (s *TransformService) record(ctx context.Context, req domain.TransformRequest, out string, err error) {
	event := domain.TransformEvent{
		ID:          uuid.New(),
		TraceID:     domain.TraceIDFromContext(ctx),
		Direction:   req.Direction.String(),
		Method:      req.Method.String(),
		Succeeded:   err == nil,
		ErrorKind:   domain.ErrorKind(err),
		InputBytes:  len(req.Payload),
		OutputBytes: len(out),
		At:          s.now().UTC(),
	}

	if err != nil {
		// 🛡️ Privacy: payloads and passphrases never reach the logs
		s.logger.Warn("Transform failed",
			slog.String("trace_id", event.TraceID),
			slog.String("method", event.Method),
			slog.String("direction", event.Direction),
			slog.String("kind", event.ErrorKind),
		)
	} else {
		s.logger.Debug("Transform completed",
			slog.String("trace_id", event.TraceID),
			slog.String("method", event.Method),
			slog.String("direction", event.Direction),
			slog.Int("input_bytes", event.InputBytes),
		)
	}

	for _, o := range s.observers {
		o.ObserveTransform(ctx, event)
	}
}
