package api

import (
	"log/slog"
	"net/http"

	"github.com/taskflow/notify/internal/api/shared"
	"github.com/taskflow/notify/internal/service/auth"
	"github.com/taskflow/notify/internal/store"
)

// AuthHandler handles login requests for the notification API.
type AuthHandler struct {
	users      store.UserStore
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users store.UserStore, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if jwtService == nil {
		panic("jwtService cannot be nil for AuthHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /auth/login requests. Unknown emails and wrong passwords
// both produce the same 401 so callers cannot probe for accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, shared.SanitizeValidationError(err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to process login", err)
		return
	}

	if err := auth.VerifyPassword(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	h.logger.Debug("user logged in", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{Token: token})
}
