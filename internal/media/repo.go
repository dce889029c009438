package media

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateParams struct {
	OwnerID   string
	SiteName  string
	ObjectKey string
	Kind      Kind
	Latitude  float64
	Longitude float64
	Caption   string
}

type ReviewParams struct {
	Status      Status
	Note        string
	RewardCents int64
}

type Repo interface {
	Create(ctx context.Context, params CreateParams) (*Submission, error)
	GetByPublicID(ctx context.Context, publicID string) (*Submission, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Submission, error)
	Review(ctx context.Context, publicID string, params ReviewParams) (*Submission, error)
}

const (
	insertSubmissionQuery = `
		INSERT INTO media_submissions (public_id, owner_id, site_name, object_key, kind, latitude, longitude, caption)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, review_note, reward_cents, created_at, updated_at
		`
	selectSubmissionQuery = `
		SELECT id, public_id, owner_id, site_name, object_key, kind, latitude, longitude, caption, status, review_note, reward_cents, created_at, updated_at
		FROM media_submissions
		WHERE public_id = $1
		`
	listByOwnerQuery = `
		SELECT id, public_id, owner_id, site_name, object_key, kind, latitude, longitude, caption, status, review_note, reward_cents, created_at, updated_at
		FROM media_submissions
		WHERE owner_id = $1
		ORDER BY created_at DESC
		`
	reviewSubmissionQuery = `
		UPDATE media_submissions
		SET status = $2, review_note = $3, reward_cents = $4, updated_at = now()
		WHERE public_id = $1 AND status = 'pending'
		RETURNING id, public_id, owner_id, site_name, object_key, kind, latitude, longitude, caption, status, review_note, reward_cents, created_at, updated_at
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, params CreateParams) (*Submission, error) {
	s := &Submission{
		PublicID:  uuid.NewString(),
		OwnerID:   params.OwnerID,
		SiteName:  params.SiteName,
		ObjectKey: params.ObjectKey,
		Kind:      params.Kind,
		Latitude:  params.Latitude,
		Longitude: params.Longitude,
		Caption:   params.Caption,
	}
	row := r.db.QueryRowContext(ctx, insertSubmissionQuery,
		s.PublicID, s.OwnerID, s.SiteName, s.ObjectKey, s.Kind, s.Latitude, s.Longitude, s.Caption,
	)
	if err := row.Scan(&s.ID, &s.Status, &s.ReviewNote, &s.RewardCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
		r.logger.Error("failed to insert media submission", zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *repo) GetByPublicID(ctx context.Context, publicID string) (*Submission, error) {
	var s Submission
	err := scanSubmission(r.db.QueryRowContext(ctx, selectSubmissionQuery, publicID), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to lookup media submission", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListByOwner(ctx context.Context, ownerID string) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx, listByOwnerQuery, ownerID)
	if err != nil {
		r.logger.Error("failed to list media submissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.PublicID, &s.OwnerID, &s.SiteName, &s.ObjectKey, &s.Kind, &s.Latitude, &s.Longitude, &s.Caption, &s.Status, &s.ReviewNote, &s.RewardCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Review transitions a pending submission. A second review finds no
// pending row and reports ErrAlreadyReviewed (or ErrNotFound when the
// id never existed).
func (r *repo) Review(ctx context.Context, publicID string, params ReviewParams) (*Submission, error) {
	var s Submission
	err := scanSubmission(r.db.QueryRowContext(ctx, reviewSubmissionQuery, publicID, params.Status, params.Note, params.RewardCents), &s)
	if errors.Is(err, sql.ErrNoRows) {
		if _, lookupErr := r.GetByPublicID(ctx, publicID); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrAlreadyReviewed
	}
	if err != nil {
		r.logger.Error("failed to review media submission", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func scanSubmission(row *sql.Row, s *Submission) error {
	return row.Scan(&s.ID, &s.PublicID, &s.OwnerID, &s.SiteName, &s.ObjectKey, &s.Kind, &s.Latitude, &s.Longitude, &s.Caption, &s.Status, &s.ReviewNote, &s.RewardCents, &s.CreatedAt, &s.UpdatedAt)
}
