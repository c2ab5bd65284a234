package httpapi

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cueleague/snooker-scores/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequireBasicAuth guards the structured score API with a single shared
// credential pair. Comparison is constant-time on both fields.
func RequireBasicAuth(username, password string, next http.Handler) http.Handler {
	expectedUser := []byte(strings.TrimSpace(username))
	expectedPass := []byte(strings.TrimSpace(password))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireBasicAuth")
		defer span.End()

		if len(expectedUser) == 0 || len(expectedPass) == 0 {
			writeError(ctx, w, fmt.Errorf("%w: API credentials are not configured", usecase.ErrDependencyUnavailable))
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="snooker-scores"`)
			writeError(ctx, w, fmt.Errorf("%w: missing or malformed Authorization header", usecase.ErrUnauthorized))
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(user), expectedUser) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), expectedPass) == 1
		if !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="snooker-scores"`)
			writeError(ctx, w, fmt.Errorf("%w: invalid credentials", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(withAPIUser(ctx, user)))
	})
}

func RequireInternalJobToken(token string, next http.Handler) http.Handler {
	expectedToken := strings.TrimSpace(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireInternalJobToken")
		defer span.End()

		if expectedToken == "" {
			writeError(ctx, w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
			return
		}

		providedToken := strings.TrimSpace(r.Header.Get("X-Internal-Job-Token"))
		if providedToken == "" || subtle.ConstantTimeCompare([]byte(providedToken), []byte(expectedToken)) != 1 {
			writeError(ctx, w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder remembers the status code a handler wrote so the access log
// can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func RequestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequestLogging")
		defer span.End()

		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
		}
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			fields = append(fields,
				"trace_id", spanCtx.TraceID().String(),
				"span_id", spanCtx.SpanID().String(),
			)
		}
		logger.InfoContext(ctx, "http request", fields...)
	})
}

// RequestTracing starts the server span. Probe paths are never traced. When
// captureBody is set, up to bodyMaxBytes of the request body lands on the
// span as an attribute and the body is replayed for the handler.
func RequestTracing(captureBody bool, bodyMaxBytes int, next http.Handler) http.Handler {
	if captureBody && bodyMaxBytes > 0 {
		next = captureRequestBody(bodyMaxBytes, next)
	}
	return otelhttp.NewHandler(next, "snooker-scores-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func captureRequestBody(maxBytes int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		head, err := io.ReadAll(io.LimitReader(r.Body, int64(maxBytes)))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		trace.SpanFromContext(r.Context()).SetAttributes(
			attribute.String("http.request.body", string(head)),
		)
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
		next.ServeHTTP(w, r)
	})
}

var probePaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/livez":   {},
	"/readyz":  {},
}

func shouldTraceRequest(path string) bool {
	_, probe := probePaths[strings.ToLower(strings.TrimSpace(path))]
	return !probe
}

func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll, allowlist := corsAllowlist(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.CORS")
		defer span.End()

		if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
			setCORSHeaders(w, origin, allowAll, allowlist)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func corsAllowlist(origins []string) (allowAll bool, exact map[string]struct{}) {
	exact = make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch trimmed {
		case "":
		case "*":
			allowAll = true
		default:
			exact[trimmed] = struct{}{}
		}
	}
	return allowAll, exact
}

func setCORSHeaders(w http.ResponseWriter, origin string, allowAll bool, exact map[string]struct{}) {
	switch {
	case allowAll:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	default:
		if _, ok := exact[origin]; !ok {
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept")
	w.Header().Set("Access-Control-Max-Age", "600")
}
