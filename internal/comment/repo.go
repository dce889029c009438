package comment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, yatraID, authorID, body string) (*Comment, error)
	GetByPublicID(ctx context.Context, publicID string) (*Comment, error)
	ListByYatra(ctx context.Context, yatraID string) ([]Comment, error)
	Delete(ctx context.Context, publicID string) error
}

const (
	insertCommentQuery = `
		INSERT INTO comments (public_id, yatra_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
		`
	selectCommentQuery = `
		SELECT id, public_id, yatra_id, author_id, body, created_at
		FROM comments
		WHERE public_id = $1
		`
	listByYatraQuery = `
		SELECT id, public_id, yatra_id, author_id, body, created_at
		FROM comments
		WHERE yatra_id = $1
		ORDER BY created_at ASC
		`
	deleteCommentQuery = `
		DELETE FROM comments WHERE public_id = $1
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, yatraID, authorID, body string) (*Comment, error) {
	c := &Comment{
		PublicID: uuid.NewString(),
		YatraID:  yatraID,
		AuthorID: authorID,
		Body:     body,
	}
	row := r.db.QueryRowContext(ctx, insertCommentQuery, c.PublicID, c.YatraID, c.AuthorID, c.Body)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		r.logger.Error("failed to insert comment", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *repo) GetByPublicID(ctx context.Context, publicID string) (*Comment, error) {
	var c Comment
	err := r.db.QueryRowContext(ctx, selectCommentQuery, publicID).
		Scan(&c.ID, &c.PublicID, &c.YatraID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to lookup comment", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *repo) ListByYatra(ctx context.Context, yatraID string) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, listByYatraQuery, yatraID)
	if err != nil {
		r.logger.Error("failed to list comments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PublicID, &c.YatraID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, publicID string) error {
	res, err := r.db.ExecContext(ctx, deleteCommentQuery, publicID)
	if err != nil {
		r.logger.Error("failed to delete comment", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
