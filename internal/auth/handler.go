package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/guard"
	"github.com/dharohar/dharohar/internal/httpx"
	"github.com/dharohar/dharohar/internal/session"
	"github.com/dharohar/dharohar/internal/user"
)

type Handler struct {
	logger   *zap.Logger
	service  Service
	sessions *session.Manager
	gate     *guard.Gate
	validate *validator.Validate
}

func NewHandler(service Service, sessions *session.Manager, gate *guard.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(h.gate.RequireSession).Get("/me", h.Me)
	return r
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userResponse struct {
	PublicID string    `json:"public_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req registerRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	u, err := h.service.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code:    httpx.ErrConflict,
				Message: "email already exists",
			})
		case errors.Is(err, user.ErrDuplicateUsername):
			httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
				Code:    httpx.ErrConflict,
				Message: "username already exists",
			})
		default:
			h.logger.Error("failed to register user", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	// Signup doubles as the first login.
	if err := h.sessions.Create(w, u.PublicID, u.Email, u.Role); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse{
		PublicID: u.PublicID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req loginRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	u, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid credentials",
			})
		case errors.Is(err, ErrUserNotActive):
			httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
				Code:    httpx.ErrForbidden,
				Message: "account is not active",
			})
		default:
			h.logger.Error("login failed", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	if err := h.sessions.Create(w, u.PublicID, u.Email, u.Role); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse{
		PublicID: u.PublicID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := guard.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
			Code:    httpx.ErrUnauthorized,
			Message: "authentication required",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"subject_id": claims.Sub,
		"email":      claims.Email,
		"role":       claims.Role,
	})
}
