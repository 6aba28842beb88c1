package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"compify/api/internal/solver"
	"compify/api/internal/solver/types"
)

// Credentials is the runtime-settable API key.
type Credentials interface {
	Set(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Configured() bool
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handle struct {
	gw      *solver.Gateway
	creds   Credentials
	db      Pinger
	timeout time.Duration
	log     *zap.Logger
}

func New(gw *solver.Gateway, creds Credentials, db Pinger, timeout time.Duration, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Handle{gw: gw, creds: creds, db: db, timeout: timeout, log: log}
}

// Routes mounts the API on a fresh chi router.
func (h *Handle) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", h.Solve)
		r.Post("/verify", h.Verify)
		r.Get("/schema/{name}", h.Schema)
		r.Get("/credential", h.CredentialStatus)
		r.Put("/credential", h.SetCredential)
		r.Delete("/credential", h.ClearCredential)
	})
	return r
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

// deadline honours X-Request-Timeout (seconds) or ?timeoutSec=, else the default.
func (h *Handle) deadline(r *http.Request) time.Duration {
	for _, v := range []string{r.Header.Get("X-Request-Timeout"), r.URL.Query().Get("timeoutSec")} {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return h.timeout
}

// gateway picks the engine named in the request, or the default one.
func (h *Handle) gateway(engine string) (*solver.Gateway, error) {
	if strings.TrimSpace(engine) == "" {
		return h.gw, nil
	}
	return h.gw.Using(engine)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handle) fail(w http.ResponseWriter, op string, err error) {
	kind := types.KindOf(err)
	code := statusOf(err)
	if code >= 500 {
		h.log.Warn(op+" failed", zap.Error(err), zap.String("kind", string(kind)), zap.Int("status", code))
	}
	writeJSON(w, code, errorBody{Error: err.Error(), Kind: string(kind)})
}

func statusOf(err error) int {
	switch types.KindOf(err) {
	case types.KindAuthenticationMissing:
		return http.StatusUnauthorized
	case types.KindEmptyResponse, types.KindMalformedResponse:
		return http.StatusBadGateway
	case types.KindCapability:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	if errors.Is(err, solver.ErrNoInput) || errors.Is(err, solver.ErrIncompleteVerify) || errors.Is(err, solver.ErrBadImage) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handle) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
