package yatra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, authorID, title, body string) (*Yatra, error)
	GetByPublicID(ctx context.Context, publicID string) (*Yatra, error)
	List(ctx context.Context, limit int) ([]Yatra, error)
	Update(ctx context.Context, publicID, title, body string) (*Yatra, error)
	Delete(ctx context.Context, publicID string) error
}

const (
	insertYatraQuery = `
		INSERT INTO yatras (public_id, author_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
		`
	selectYatraQuery = `
		SELECT id, public_id, author_id, title, body, created_at, updated_at
		FROM yatras
		WHERE public_id = $1
		`
	listYatrasQuery = `
		SELECT id, public_id, author_id, title, body, created_at, updated_at
		FROM yatras
		ORDER BY created_at DESC
		LIMIT $1
		`
	updateYatraQuery = `
		UPDATE yatras
		SET title = $2, body = $3, updated_at = now()
		WHERE public_id = $1
		RETURNING id, public_id, author_id, title, body, created_at, updated_at
		`
	deleteYatraQuery = `
		DELETE FROM yatras WHERE public_id = $1
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, authorID, title, body string) (*Yatra, error) {
	y := &Yatra{
		PublicID: uuid.NewString(),
		AuthorID: authorID,
		Title:    title,
		Body:     body,
	}
	row := r.db.QueryRowContext(ctx, insertYatraQuery, y.PublicID, y.AuthorID, y.Title, y.Body)
	if err := row.Scan(&y.ID, &y.CreatedAt, &y.UpdatedAt); err != nil {
		r.logger.Error("failed to insert yatra", zap.Error(err))
		return nil, err
	}
	return y, nil
}

func (r *repo) GetByPublicID(ctx context.Context, publicID string) (*Yatra, error) {
	var y Yatra
	err := r.db.QueryRowContext(ctx, selectYatraQuery, publicID).
		Scan(&y.ID, &y.PublicID, &y.AuthorID, &y.Title, &y.Body, &y.CreatedAt, &y.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to lookup yatra", zap.Error(err))
		return nil, err
	}
	return &y, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]Yatra, error) {
	rows, err := r.db.QueryContext(ctx, listYatrasQuery, limit)
	if err != nil {
		r.logger.Error("failed to list yatras", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Yatra
	for rows.Next() {
		var y Yatra
		if err := rows.Scan(&y.ID, &y.PublicID, &y.AuthorID, &y.Title, &y.Body, &y.CreatedAt, &y.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, publicID, title, body string) (*Yatra, error) {
	var y Yatra
	err := r.db.QueryRowContext(ctx, updateYatraQuery, publicID, title, body).
		Scan(&y.ID, &y.PublicID, &y.AuthorID, &y.Title, &y.Body, &y.CreatedAt, &y.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to update yatra", zap.Error(err))
		return nil, err
	}
	return &y, nil
}

func (r *repo) Delete(ctx context.Context, publicID string) error {
	res, err := r.db.ExecContext(ctx, deleteYatraQuery, publicID)
	if err != nil {
		r.logger.Error("failed to delete yatra", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
