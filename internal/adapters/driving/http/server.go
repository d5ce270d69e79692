package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the driving ports the API exposes
type Services struct {
	Auth          driving.AuthService
	Users         driving.UserService
	Contexts      driving.ContextService
	Documents     driving.DocumentService
	Uploads       driving.UploadService
	Organizations driving.OrganizationService
	Invitations   driving.InvitationService
	Helpers       driving.HelperService
	Billing       driving.BillingService
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	authService         driving.AuthService
	userService         driving.UserService
	contextService      driving.ContextService
	docService          driving.DocumentService
	uploadService       driving.UploadService
	organizationService driving.OrganizationService
	invitationService   driving.InvitationService
	helperService       driving.HelperService
	billingService      driving.BillingService

	// Readiness checks by name (postgres, redis, blob, ...)
	checks map[string]Pinger
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server. checks may be nil.
func NewServer(cfg Config, svc Services, checks map[string]Pinger) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		logger:              logger,
		authService:         svc.Auth,
		userService:         svc.Users,
		contextService:      svc.Contexts,
		docService:          svc.Documents,
		uploadService:       svc.Uploads,
		organizationService: svc.Organizations,
		invitationService:   svc.Invitations,
		helperService:       svc.Helpers,
		billingService:      svc.Billing,
		checks:              checks,
	}

	var handler http.Handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.setupRoutes()
	return s
}

// Handler returns the fully wrapped handler (used by tests)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /api/docs/doc.json", s.handleAPIDocs)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Public reads
	s.router.HandleFunc("GET /api/v1/invitations/{token}", s.handleViewInvitation)
	s.router.HandleFunc("GET /api/v1/billing/pricing", s.handlePricing)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout", authed(s.handleLogout))

	// Profile
	s.router.Handle("GET /api/v1/me", authed(s.handleGetMe))
	s.router.Handle("PUT /api/v1/me", authed(s.handleUpdateMe))
	s.router.Handle("PUT /api/v1/me/password", authed(s.handleChangePassword))
	s.router.Handle("PUT /api/v1/me/default-context", authed(s.handleSetDefaultContext))

	// Contexts and billing
	s.router.Handle("GET /api/v1/contexts", authed(s.handleListContexts))
	s.router.Handle("GET /api/v1/contexts/active", authed(s.handleGetActiveContext))
	s.router.Handle("PUT /api/v1/contexts/active", authed(s.handleSetActiveContext))
	s.router.Handle("GET /api/v1/contexts/{id}/invoices", authed(s.handleListInvoices))
	s.router.Handle("POST /api/v1/contexts/{id}/credits", authed(s.handlePurchaseCredits))

	// Document ledger
	s.router.Handle("GET /api/v1/documents", authed(s.handleListDocuments))
	s.router.Handle("GET /api/v1/documents/{id}", authed(s.handleGetDocument))

	// Upload batches
	s.router.Handle("POST /api/v1/uploads", authed(s.handleCreateUpload))
	s.router.Handle("GET /api/v1/uploads/{id}", authed(s.handleGetUpload))
	s.router.Handle("DELETE /api/v1/uploads/{id}", authed(s.handleDiscardUpload))
	s.router.Handle("POST /api/v1/uploads/{id}/files", authed(s.handleAddUploadFiles))
	s.router.Handle("DELETE /api/v1/uploads/{id}/files/{fileId}", authed(s.handleRemoveUploadFile))
	s.router.Handle("POST /api/v1/uploads/{id}/start", authed(s.handleStartUpload))

	// Organizations
	s.router.Handle("POST /api/v1/organizations", authed(s.handleCreateOrganization))
	s.router.Handle("GET /api/v1/organizations/{id}", authed(s.handleGetOrganization))
	s.router.Handle("PUT /api/v1/organizations/{id}", authed(s.handleRenameOrganization))
	s.router.Handle("GET /api/v1/organizations/{id}/members", authed(s.handleListMembers))
	s.router.Handle("PUT /api/v1/organizations/{id}/members/{userId}", authed(s.handleUpdateMemberRole))
	s.router.Handle("DELETE /api/v1/organizations/{id}/members/{userId}", authed(s.handleRemoveMember))
	s.router.Handle("GET /api/v1/organizations/{id}/invitations", authed(s.handleListInvitations))
	s.router.Handle("POST /api/v1/organizations/{id}/invitations", authed(s.handleInvite))

	// Invitations
	s.router.Handle("POST /api/v1/invitations/{token}/accept", authed(s.handleAcceptInvitation))
	s.router.Handle("POST /api/v1/invitations/{token}/decline", authed(s.handleDeclineInvitation))

	// Helpers
	s.router.Handle("GET /api/v1/helpers", authed(s.handleListHelpers))
	s.router.Handle("POST /api/v1/helpers", authed(s.handleGrantHelper))
	s.router.Handle("DELETE /api/v1/helpers/{id}", authed(s.handleRevokeHelper))

	// Everything else
	s.router.HandleFunc("/", s.handleNotFound)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
