package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

// Twilio posts inbound SMS as a form; it authenticates by shared knowledge of
// the webhook URL, so the route stays outside the basic-auth surface.
func registerWebhookRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /sms/scores", handler.ReportScoreSMS)
}

func registerScoreAPIRoutes(mux *http.ServeMux, handler *Handler, apiUser, apiSecret string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireBasicAuth(apiUser, apiSecret, h)
	}

	mux.Handle("POST /api/v2/scores/{matchID}", guard(handler.SubmitScores))
	mux.Handle("GET /api/v2/matches", guard(handler.ListMatches))
	mux.Handle("GET /api/v2/matches/{matchID}", guard(handler.GetMatch))
	mux.Handle("GET /api/v2/players", guard(handler.ListPlayers))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/fixtures/generate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GenerateFixtures)))
	mux.Handle("POST /internal/cache/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshCache)))
}
