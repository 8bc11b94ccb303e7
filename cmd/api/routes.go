package main

import (
	"log"
	"net/http"

	httphandlers "cascadeconnect/internal/interfaces/http"
	"cascadeconnect/internal/shared/config"
	"cascadeconnect/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// OAuth callbacks arrive from the provider's browser redirect, not
	// from the app, so they stay outside the auth middleware.
	mux.HandleFunc("/api/oauth/gusto/callback", deps.OAuthHandler.HandleGustoCallback)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)

	mux.Handle("/api/invoices", authMiddleware(http.HandlerFunc(deps.InvoiceHandler.HandleInvoices)))
	mux.Handle("/api/invoices/{id}", authMiddleware(http.HandlerFunc(deps.InvoiceHandler.HandleInvoiceByID)))
	mux.Handle("/api/expenses", authMiddleware(http.HandlerFunc(deps.ExpenseHandler.HandleExpenses)))
	mux.Handle("/api/expenses/{id}", authMiddleware(http.HandlerFunc(deps.ExpenseHandler.HandleExpenseByID)))

	mux.Handle("/api/chat/channels", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleChannels)))
	mux.Handle("/api/chat/channels/{id}/messages", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleChannelMessages)))
	mux.Handle("/api/chat/channels/{id}/join", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleJoinChannel)))
	mux.Handle("/api/chat/channels/{id}/read", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleMarkRead)))
	mux.Handle("/api/chat/channels/{id}/mute", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleMute)))
	mux.Handle("/api/chat/messages/{id}", authMiddleware(http.HandlerFunc(deps.ChatHandler.HandleMessageByID)))

	mux.Handle("/api/contacts", authMiddleware(http.HandlerFunc(deps.ContactHandler.HandleContacts)))
	mux.Handle("/api/push/subscriptions", authMiddleware(http.HandlerFunc(deps.PushHandler.HandleSubscriptions)))
	mux.Handle("/api/payments/link", authMiddleware(http.HandlerFunc(deps.PaymentHandler.HandleCreatePaymentLink)))
	mux.Handle("/api/email/send", authMiddleware(http.HandlerFunc(deps.EmailHandler.HandleSendEmail)))
	mux.Handle("/api/uploads", authMiddleware(http.HandlerFunc(deps.UploadHandler.HandleUpload)))
	mux.Handle("/api/voice/twilio-token", authMiddleware(http.HandlerFunc(deps.VoiceHandler.HandleTwilioToken)))
	mux.Handle("/api/voice/telnyx-token", authMiddleware(http.HandlerFunc(deps.VoiceHandler.HandleTelnyxToken)))
	mux.Handle("/api/integrations/{provider}", authMiddleware(http.HandlerFunc(deps.OAuthHandler.HandleIntegration)))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedOrigins)(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// HTTPS enforcement for deployments without a TLS-terminating proxy
	if cfg.Server.ForceHTTPS {
		handler = middleware.HSTS(middleware.SecureCookies(middleware.RequireHTTPS(cfg.Server.AllowedHosts)(handler)))
		log.Println("HTTPS enforcement enabled (HSTS + SecureCookies)")
	}

	return handler
}
