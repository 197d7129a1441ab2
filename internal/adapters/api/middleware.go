package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"profiled/internal/core/domain"
	"profiled/internal/core/ports"
	"profiled/internal/infrastructure/metrics"
	"profiled/internal/logs"
)

type contextKey string

const (
	CtxOwnerID   contextKey = "owner_id"
	ctxRequestID contextKey = "request_id"
)

// OwnerID returns the authenticated owner from the request context.
func OwnerID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(CtxOwnerID).(string)
	return id, ok && id != ""
}

// AuthMiddleware resolves a Bearer API key into an owner scope. Keys are
// looked up by their peppered hash; the raw credential is never stored or
// logged. Credential use updates last_used_at best-effort.
func AuthMiddleware(repo ports.AuthRepository, pepper string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "API key required")
				return
			}

			raw := strings.TrimPrefix(authHeader, "Bearer ")
			keyHash := domain.HashAPIKey(raw, pepper)

			apiKey, err := repo.GetAPIKeyByHash(r.Context(), keyHash)
			if err != nil {
				logs.Logger.Errorf("reqid=%s api key lookup failed: %v", GetRequestID(r), err)
				WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error", "unexpected server error")
				return
			}
			if apiKey == nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid API key")
				return
			}

			if err := repo.TouchAPIKey(r.Context(), apiKey.ID); err != nil {
				logs.Logger.Warnf("reqid=%s touch api key %s: %v", GetRequestID(r), apiKey.ID, err)
			}

			ctx := context.WithValue(r.Context(), CtxOwnerID, apiKey.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestID assigns each request an identifier, honoring one supplied by the
// client, and echoes it back in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), ctxRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the identifier assigned by RequestID, or "".
func GetRequestID(r *http.Request) string {
	if s, ok := r.Context().Value(ctxRequestID).(string); ok {
		return s
	}
	return ""
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// LoggerMW writes one access log line per request.
func LoggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)
		d := time.Since(start)
		logs.Logger.Infof("reqid=%s method=%s uri=%s status=%d bytes=%d dur=%s ip=%s",
			GetRequestID(r), r.Method, r.RequestURI, sw.status, sw.bytes, d, r.RemoteAddr)
	})
}

// Recoverer converts handler panics into a logged 500 problem response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				reqid := GetRequestID(r)
				logs.Logger.Errorf("panic: %v reqid=%s uri=%s method=%s\nstack:\n%s",
					rec, reqid, r.RequestURI, r.Method, string(debug.Stack()))
				WriteProblem(w, r, http.StatusInternalServerError,
					"Internal Server Error", "unexpected server error (see logs by request_id)")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS answers preflight requests and marks responses as cross-origin safe.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, If-Match, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, Link, Location, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps request body size; oversized bodies surface as decode errors
// in the handlers.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMW records per-request counters and latency. The path label uses
// the route pattern, not the raw URL, to keep cardinality bounded.
func MetricsMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
