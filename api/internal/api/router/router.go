// api/internal/api/router/router.go
package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/irgordon/textcipher/api/internal/api/handlers"
	api_middleware "github.com/irgordon/textcipher/api/internal/api/middleware"
	deliveryhttp "github.com/irgordon/textcipher/api/internal/delivery/http"
	"github.com/irgordon/textcipher/api/internal/telemetry"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins   []string
	MaxBodyBytes     int64
	TransformHandler *handlers.TransformHandler
	EventsHandler    *handlers.EventsHandler
	WSHandler        *handlers.WebSocketHandler
	HealthHandler    *deliveryhttp.HealthHandler
	RateLimiter      *api_middleware.RateLimiter
	Metrics          *telemetry.Metrics // nil disables /metrics
	Logger           *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api_middleware.Trace)
	r.Use(api_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(api_middleware.Metrics(cfg.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", api_middleware.TraceHeader},
		ExposedHeaders:   []string{api_middleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// =========================================================================
	// 2. Transform API
	// =========================================================================

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// 🛡️ Limit all incoming JSON requests (OOM Protection)
		r.Use(api_middleware.MaxBytes(cfg.MaxBodyBytes))

		// 🛡️ In-memory token bucket rate limiting
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}

		r.Get("/", cfg.TransformHandler.Root)
		r.Get("/methods", cfg.TransformHandler.Methods)
		r.Post("/encrypt", cfg.TransformHandler.Encrypt)
		r.Post("/decrypt", cfg.TransformHandler.Decrypt)
	})

	// =========================================================================
	// 3. Long-lived Streams (no request timeout)
	// =========================================================================

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.EventsHandler != nil {
			r.Get("/events", cfg.EventsHandler.Stream)
		}
		if cfg.WSHandler != nil {
			r.Get("/ws", cfg.WSHandler.Serve)
		}
	})

	// =========================================================================
	// 4. Operations
	// =========================================================================

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}

// OriginPolicy mirrors the CORS origin list for transports CORS does not cover (WebSocket upgrades).
func OriginPolicy(allowed []string) func(origin string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(string) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}
