package yatra

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
	"github.com/dharohar/dharohar/internal/token"
)

const listLimit = 50

type Handler struct {
	logger   *zap.Logger
	repo     Repo
	gate     *guard.Gate
	validate *validator.Validate
}

func NewHandler(repo Repo, gate *guard.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		logger:   logger,
		repo:     repo,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes exposes reads publicly and gates mutations behind a session.
// The comments router is mounted beneath each yatra.
func (h *Handler) Routes(comments http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{yatraID}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireSession)
		r.Post("/", h.Create)
		r.Put("/{yatraID}", h.Update)
		r.Delete("/{yatraID}", h.Delete)
	})
	r.Mount("/{yatraID}/comments", comments)
	return r
}

type yatraRequest struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Body  string `json:"body"  validate:"required,min=1,max=50000"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	yatras, err := h.repo.List(ctx, listLimit)
	if err != nil {
		h.logger.Error("failed to list yatras", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, yatras)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	y, err := h.repo.GetByPublicID(ctx, chi.URLParam(r, "yatraID"))
	if errors.Is(err, ErrNotFound) {
		h.writeNotFound(w)
		return
	}
	if err != nil {
		h.writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, y)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	var req yatraRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	y, err := h.repo.Create(ctx, claims.Sub, req.Title, req.Body)
	if err != nil {
		h.writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, y)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	y, ok := h.authorize(w, r, claims)
	if !ok {
		return
	}

	var req yatraRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	updated, err := h.repo.Update(ctx, y.PublicID, req.Title, req.Body)
	if err != nil {
		h.writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	y, ok := h.authorize(w, r, claims)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.Delete(ctx, y.PublicID); err != nil {
		h.writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorize loads the yatra and applies the ownership gate before any
// mutation proceeds. Admins bypass ownership.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, claims *token.Claims) (*Yatra, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	y, err := h.repo.GetByPublicID(ctx, chi.URLParam(r, "yatraID"))
	if errors.Is(err, ErrNotFound) {
		h.writeNotFound(w)
		return nil, false
	}
	if err != nil {
		h.writeInternal(w)
		return nil, false
	}
	if !guard.Owns(claims, y.AuthorID) {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "insufficient permissions",
		})
		return nil, false
	}
	return y, true
}

func (h *Handler) writeNotFound(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
		Code:    httpx.ErrNotFound,
		Message: "yatra not found",
	})
}

func (h *Handler) writeInternal(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code:    httpx.ErrInternal,
		Message: "internal server error",
	})
}
