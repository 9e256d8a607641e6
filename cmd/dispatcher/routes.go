package main

import (
	"log"
	"net/http"

	httphandlers "notifyd/internal/interfaces/http"
	"notifyd/internal/shared/config"
	"notifyd/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Trigger webhook: one notification record per invocation
	mux.HandleFunc("/api/events/notification", deps.DispatchHandler.HandleNotificationEvent)

	// Apply global middleware
	handler := middleware.Logging(middleware.Tracing(middleware.HostFilter(cfg.Server.AllowedHosts)(mux)))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
