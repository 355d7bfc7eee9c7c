package main

import (
	"log"
	"net/http"

	httphandlers "tesoro/internal/interfaces/http"
	"tesoro/internal/shared/config"
	"tesoro/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("/api/auth/me", protect(deps.AuthHandler.HandleMe))

	mux.Handle("/api/funds", protect(deps.FundHandler.HandleFunds))
	mux.Handle("/api/funds/{id}", protect(deps.FundHandler.HandleFundByID))
	mux.Handle("/api/funds/{id}/entries", protect(deps.FundHandler.HandleFundLedger))

	mux.Handle("/api/entries", protect(deps.LedgerHandler.HandleEntries))
	mux.Handle("/api/entries/{id}", protect(deps.LedgerHandler.HandleEntryByID))
	mux.Handle("/api/entries/{id}/reverse", protect(deps.LedgerHandler.HandleReverseEntry))

	mux.Handle("/api/transfers", protect(deps.TransferHandler.HandleTransfer))

	mux.Handle("/api/reports/{id}/compile", protect(deps.ReportHandler.HandleCompile))

	mux.Handle("/api/events", protect(deps.EventHandler.HandleEvents))
	mux.Handle("/api/events/{id}", protect(deps.EventHandler.HandleEventByID))
	mux.Handle("/api/events/{id}/budget", protect(deps.EventHandler.HandleBudgetItems))
	mux.Handle("/api/events/{id}/budget/{itemId}", protect(deps.EventHandler.HandleBudgetItemByID))
	mux.Handle("/api/events/{id}/actuals", protect(deps.EventHandler.HandleActuals))
	mux.Handle("/api/events/{id}/submit", protect(deps.EventHandler.HandleSubmit))
	mux.Handle("/api/events/{id}/request-revision", protect(deps.EventHandler.HandleRequestRevision))
	mux.Handle("/api/events/{id}/reject", protect(deps.EventHandler.HandleReject))
	mux.Handle("/api/events/{id}/approve", protect(deps.EventHandler.HandleApprove))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	// Apply tracing middleware when telemetry is enabled
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
