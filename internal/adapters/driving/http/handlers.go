package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse lists dependency checks
// @Description Readiness with per-dependency status
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings every backing service
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for name, p := range s.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// handleAPIDocs serves the registered swagger document
func (s *Server) handleAPIDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api docs not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// Auth endpoints

// handleSignup godoc
// @Summary      Sign up
// @Description  Register a user with a personal credit account and start a session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignupRequest  true  "Account details"
// @Success      201      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Email already registered"
// @Router       /auth/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.Signup(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err, "signup failed")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			s.writeServiceError(w, r, err, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session and close its upload batches
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.authService.Logout(r.Context(), extractBearerToken(r)); err != nil {
		s.logger.Warn("logout failed", "error", err)
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Profile endpoints

// handleGetMe godoc
// @Summary      Get current user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserSummary
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleUpdateMe godoc
// @Summary      Update profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.UpdateProfileRequest  true  "Profile changes"
// @Success      200      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse  "Email already registered"
// @Router       /me [put]
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), GetAuthContext(r.Context()).UserID, req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleChangePassword godoc
// @Summary      Change password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse  "Current password is wrong"
// @Router       /me/password [put]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.authService.ChangePassword(r.Context(), GetAuthContext(r.Context()).UserID, req); err != nil {
		s.writeServiceError(w, r, err, "failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleSetDefaultContext godoc
// @Summary      Set default context
// @Description  Pick the context new sessions start in
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.SetDefaultContextRequest  true  "Context"
// @Success      200      {object}  domain.UserSummary
// @Failure      404      {object}  ErrorResponse  "Unknown context"
// @Router       /me/default-context [put]
func (s *Server) handleSetDefaultContext(w http.ResponseWriter, r *http.Request) {
	var req driving.SetDefaultContextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userService.SetDefaultContext(r.Context(), GetAuthContext(r.Context()), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to set default context")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// Helper functions

// maxJSONBody bounds JSON request bodies
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors to status codes. Unmapped errors are
// logged and reported as fallback with a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownContext):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrBatchEmpty),
		errors.Is(err, domain.ErrNotPDF):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrBatchInProgress),
		errors.Is(err, domain.ErrBatchClosed),
		errors.Is(err, domain.ErrLastAdmin),
		errors.Is(err, domain.ErrInvitationClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(fallback, slog.String("path", r.URL.Path), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
