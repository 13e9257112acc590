package main

import (
	"log"
	"net/http"

	httphandlers "layerdemo/internal/interfaces/http"
	"layerdemo/internal/shared/config"
	"layerdemo/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Layer relay
	mux.HandleFunc("/server/tokens/create_session_token", deps.TokenHandler.HandleCreateSessionToken)
	mux.HandleFunc("/server/tokens/fetch_account_session_info", deps.TokenHandler.HandleFetchAccountSessionInfo)

	// Manual sign-up fallback
	mux.HandleFunc("/server/applicants/register", deps.ApplicantHandler.HandleRegister)

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
