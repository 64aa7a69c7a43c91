// Package mockserver implements a mock generate endpoint speaking the vLLM,
// TGI, and Triton wire shapes. It exists so benchmarks and tests can run
// without a GPU-backed serving stack behind them.
package mockserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"benchd/pkg/types"
)

// Options configures the mock endpoint's behavior.
type Options struct {
	// TokenDelay is slept per generated token to simulate decode time.
	TokenDelay time.Duration
	// ErrorRate in [0,1) is the probability a request receives an
	// {"error": ...} body, exercising client retry loops.
	ErrorRate float64
	// Seed drives the fault-injection RNG.
	Seed int64
	// MaxBodyBytes caps request bodies; zero keeps the 1 MiB default.
	MaxBodyBytes int64
	// CORSOrigins enables CORS for the given origins when non-empty.
	CORSOrigins []string
	Logger      zerolog.Logger
}

// Server handles mock generate traffic.
type Server struct {
	opts Options
	log  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// filler cycles through deterministic tokens, so completions are stable
// across runs and visibly synthetic.
var filler = []string{" lorem", " ipsum", " dolor", " sit", " amet"}

// New builds the mock server and its router.
func New(opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Server{
		opts: opts,
		log:  opts.Logger,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

// Handler returns the chi router for the mock endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(metricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Post("/generate", s.handleGenerate)
	r.Post("/v2/models/{model}/generate", s.handleTritonGenerate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// generatePayload is the union of the vLLM and TGI request shapes; the
// populated fields tell them apart.
type generatePayload struct {
	// vLLM / Triton
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	// TGI
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxNewTokens int `json:"max_new_tokens"`
	} `json:"parameters"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (generatePayload, bool) {
	var p generatePayload
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return p, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return p, false
	}
	if strings.TrimSpace(p.Prompt) == "" && strings.TrimSpace(p.Inputs) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return p, false
	}
	return p, true
}

// injectError decides whether this request gets a fault.
func (s *Server) injectError() bool {
	if s.opts.ErrorRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.opts.ErrorRate
}

// complete simulates decoding n tokens, honoring the request context.
func (s *Server) complete(ctx context.Context, n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if s.opts.TokenDelay > 0 {
			select {
			case <-time.After(s.opts.TokenDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		b.WriteString(filler[i%len(filler)])
	}
	return b.String(), nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decode(w, r)
	if !ok {
		return
	}
	if s.injectError() {
		injectedErrorsTotal.Inc()
		s.log.Debug().Str("path", r.URL.Path).Msg("injecting error body")
		writeJSON(w, map[string]any{"error": "injected fault"})
		return
	}

	if p.Inputs != "" {
		// TGI shape: completion only, no prompt echo.
		added, err := s.complete(r.Context(), p.Parameters.MaxNewTokens)
		if err != nil {
			return
		}
		writeJSON(w, map[string]any{"generated_text": added})
		return
	}
	// vLLM shape: echoes the prompt ahead of the completion.
	added, err := s.complete(r.Context(), p.MaxTokens)
	if err != nil {
		return
	}
	writeJSON(w, map[string]any{"text": p.Prompt + added})
}

func (s *Server) handleTritonGenerate(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	p, ok := s.decode(w, r)
	if !ok {
		return
	}
	if p.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if s.injectError() {
		injectedErrorsTotal.Inc()
		s.log.Debug().Str("model", model).Msg("injecting error body")
		writeJSON(w, map[string]any{"error": "injected fault"})
		return
	}
	added, err := s.complete(r.Context(), p.MaxTokens)
	if err != nil {
		return
	}
	// Triton's generate extension wraps text in a one-element list.
	writeJSON(w, map[string]any{"text": []string{p.Prompt + added}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
