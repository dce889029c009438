package media

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
	"github.com/dharohar/dharohar/internal/user"
)

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

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.gate.RequireSession)
	r.Post("/", h.Create)
	r.Get("/mine", h.Mine)
	r.Get("/{mediaID}", h.Get)
	// Review changes money-bearing state, so the admin role is
	// re-fetched from the user record instead of trusted off the token.
	r.With(h.gate.RequireRole(user.RoleAdmin, guard.RoleCheck{TrustTokenRole: false})).
		Post("/{mediaID}/review", h.Review)
	return r
}

type createRequest struct {
	SiteName  string  `json:"site_name"  validate:"required,min=2,max=128"`
	ObjectKey string  `json:"object_key" validate:"required,min=1,max=512"`
	Kind      string  `json:"kind"       validate:"required,oneof=photo video"`
	Latitude  float64 `json:"latitude"   validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude"  validate:"min=-180,max=180"`
	Caption   string  `json:"caption"    validate:"omitempty,max=1024"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	var req createRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.repo.Create(ctx, CreateParams{
		OwnerID:   claims.Sub,
		SiteName:  req.SiteName,
		ObjectKey: req.ObjectKey,
		Kind:      Kind(req.Kind),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Caption:   req.Caption,
	})
	if err != nil {
		h.logger.Error("failed to create media submission", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	subs, err := h.repo.ListByOwner(ctx, claims.Sub)
	if err != nil {
		h.logger.Error("failed to list media submissions", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := guard.ClaimsFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.repo.GetByPublicID(ctx, chi.URLParam(r, "mediaID"))
	if errors.Is(err, ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "submission not found",
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

	// Approved submissions are public to signed-in users; pending and
	// rejected ones are visible only to their owner or an admin.
	if s.Status != StatusApproved && !guard.Owns(claims, s.OwnerID) {
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "insufficient permissions",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

type reviewRequest struct {
	Status      string `json:"status"       validate:"required,oneof=approved rejected"`
	Note        string `json:"note"         validate:"omitempty,max=1024"`
	RewardCents int64  `json:"reward_cents" validate:"min=0"`
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !httpx.DecodeStrict(w, r, h.validate, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.repo.Review(ctx, chi.URLParam(r, "mediaID"), ReviewParams{
		Status:      Status(req.Status),
		Note:        req.Note,
		RewardCents: req.RewardCents,
	})
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "submission not found",
		})
		return
	case errors.Is(err, ErrAlreadyReviewed):
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: "submission already reviewed",
		})
		return
	case err != nil:
		h.logger.Error("failed to review media submission", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}
