package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/database"
)

type CreateParams struct {
	Email        string
	Username     string
	PasswordHash string
}

type Repo interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, publicID string) (*User, error)
}

const (
	insertUserQuery = `
		INSERT INTO users (public_id, email, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
		`
	selectUserByEmailQuery = `
		SELECT id, public_id, email, username, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
		`
	selectUserByPublicIDQuery = `
		SELECT id, public_id, email, username, password_hash, role, is_active, created_at, updated_at
		FROM users
		WHERE public_id = $1
		`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{db: db, logger: logger}
}

func (r *repo) Create(ctx context.Context, params CreateParams) (*User, error) {
	u := &User{
		PublicID: uuid.NewString(),
		Email:    strings.ToLower(strings.TrimSpace(params.Email)),
		Username: strings.TrimSpace(params.Username),
		Role:     RoleUser,
		IsActive: true,
	}
	u.PasswordHash = params.PasswordHash

	row := r.db.QueryRowContext(ctx, insertUserQuery,
		u.PublicID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.Role,
		u.IsActive,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "users_email_key":
				r.logger.Debug("duplicate email", zap.String("email", u.Email))
				return nil, ErrDuplicateEmail
			case "users_username_key":
				r.logger.Debug("duplicate username", zap.String("username", u.Username))
				return nil, ErrDuplicateUsername
			}
		}
		r.logger.Error("failed to insert user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := database.WithRetry(ctx, r.logger, "user.GetByEmail", func(ctx context.Context) error {
		return r.scanOne(r.db.QueryRowContext(ctx, selectUserByEmailQuery, email), &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) GetByID(ctx context.Context, publicID string) (*User, error) {
	var u User
	err := database.WithRetry(ctx, r.logger, "user.GetByID", func(ctx context.Context) error {
		return r.scanOne(r.db.QueryRowContext(ctx, selectUserByPublicIDQuery, publicID), &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) scanOne(row *sql.Row, u *User) error {
	err := row.Scan(&u.ID, &u.PublicID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to scan user", zap.Error(err))
	}
	return err
}
