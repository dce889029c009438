package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dharohar/dharohar/internal/user"
)

// dummyHash is compared against when the email doesn't exist, so a
// failed login takes the same time either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Service interface {
	Register(ctx context.Context, email, username, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
}

type service struct {
	users  user.Repo
	logger *zap.Logger
}

func NewService(users user.Repo, logger *zap.Logger) Service {
	return &service{users: users, logger: logger}
}

func (s *service) Register(ctx context.Context, email, username, password string) (*user.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	return s.users.Create(ctx, user.CreateParams{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
	})
}

// Login verifies credentials against the user record. The caller gets
// ErrInvalidCredentials whether the email is unknown or the password is
// wrong; the two cases must stay indistinguishable.
func (s *service) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, user.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserNotActive
	}
	return u, nil
}
