package comment

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
	"github.com/dharohar/dharohar/internal/yatra"
)

// YatraSource confirms a narrative exists before a comment attaches to
// it.
type YatraSource interface {
	GetByPublicID(ctx context.Context, publicID string) (*yatra.Yatra, error)
}

type Handler struct {
	logger   *zap.Logger
	repo     Repo
	yatras   YatraSource
	gate     *guard.Gate
	validate *validator.Validate
}

func NewHandler(repo Repo, yatras YatraSource, gate *guard.Gate, logger *zap.Logger) *Handler {
	return &Handler{
		logger:   logger,
		repo:     repo,
		yatras:   yatras,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NestedRoutes is mounted under /api/yatras/{yatraID}/comments.
func (h *Handler) NestedRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.With(h.gate.RequireSession).Post("/", h.Create)
	return r
}

// Routes is mounted at /api/comments for direct addressing.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(h.gate.RequireSession).Delete("/{commentID}", h.Delete)
	return r
}

type createRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	comments, err := h.repo.ListByYatra(ctx, chi.URLParam(r, "yatraID"))
	if err != nil {
		h.logger.Error("failed to list comments", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	var req createRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	yatraID := chi.URLParam(r, "yatraID")
	if _, err := h.yatras.GetByPublicID(ctx, yatraID); err != nil {
		if errors.Is(err, yatra.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
				Code:    httpx.ErrNotFound,
				Message: "yatra not found",
			})
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	c, err := h.repo.Create(ctx, yatraID, claims.Sub, req.Body)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.repo.GetByPublicID(ctx, chi.URLParam(r, "commentID"))
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "comment not found",
		})
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	if !guard.Owns(claims, c.AuthorID) {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "insufficient permissions",
		})
		return
	}

	if err := h.repo.Delete(ctx, c.PublicID); err != nil && !errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
