package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authModel "passage/internal/auth/models"
	"passage/internal/platform/middleware"
	"passage/internal/transport/http/shared"
	dErrors "passage/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks AuthService

// AuthService is the orchestrator surface the transport depends on.
type AuthService interface {
	Login(ctx context.Context, creds authModel.Credentials) (authModel.AuthResult, error)
	Logout(ctx context.Context) (authModel.AuthResult, error)
	Refresh(ctx context.Context) (authModel.AuthResult, error)
	RestoreSession(ctx context.Context) (authModel.AuthResult, error)
	CurrentSession() *authModel.Session
}

// AuthHandler handles the auth endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register mounts the auth routes on the given router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/refresh", h.handleRefresh)
	r.Post("/auth/restore", h.handleRestore)
	r.Get("/auth/session", h.handleSession)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.auth.Login(ctx, authModel.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	h.writeResult(w, r, result, err)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.Logout(r.Context())
	h.writeResult(w, r, result, err)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.Refresh(r.Context())
	h.writeResult(w, r, result, err)
}

func (h *AuthHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.RestoreSession(r.Context())
	h.writeResult(w, r, result, err)
}

// handleSession returns the cached session without touching the store.
func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	session := h.auth.CurrentSession()
	if session == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidCredentials, "no active session"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, session)
}

// writeResult maps the normalized AuthResult onto an HTTP response. A failed
// result with no error kind is a cold restore and still returns 200: the
// caller distinguishes it by the success flag.
func (h *AuthHandler) writeResult(w http.ResponseWriter, r *http.Request, result authModel.AuthResult, err error) {
	ctx := r.Context()
	if err != nil {
		h.logger.ErrorContext(ctx, "auth operation error",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "auth operation failed"))
		return
	}
	status := http.StatusOK
	if !result.Success && result.ErrorKind != "" {
		status = shared.StatusFor(dErrors.Code(result.ErrorKind))
	}
	shared.WriteJSON(w, status, result)
}
