package httpapi

import (
	"log/slog"
	"net/http"
)

// NewRouter assembles the full HTTP surface: system routes, the inbound
// message webhook, the authenticated score API and the internal job
// endpoints, wrapped in the shared middleware chain.
func NewRouter(
	handler *Handler,
	logger *slog.Logger,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	apiUser string,
	apiSecret string,
	internalJobToken string,
	captureBody bool,
	bodyMaxBytes int,
) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, swaggerEnabled)
	registerWebhookRoutes(mux, handler)
	registerScoreAPIRoutes(mux, handler, apiUser, apiSecret)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	// Outermost first: tracing starts the span the access log correlates
	// with, and the panic guard sits closest to the handlers.
	var chain http.Handler = mux
	chain = recoverPanic(logger, chain)
	chain = CORS(corsAllowedOrigins, chain)
	chain = RequestLogging(logger, chain)
	chain = RequestTracing(captureBody, bodyMaxBytes, chain)
	return chain
}

func recoverPanic(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
