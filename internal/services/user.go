package services

import (
	"context"
	"errors"

	"github.com/launchhub-app/apiserver/internal/store"
	"github.com/launchhub-app/apiserver/types"
	"go.uber.org/zap"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Upsert(ctx context.Context, user types.User) (types.User, error)
	SetRole(ctx context.Context, id int, role string) error
	MarkSubscribed(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) Upsert(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Upsert(ctx, user)
}

// EnsureAccount registers the identity on first sign-in. Failures are
// logged and swallowed: sign-in proceeds, the record is retried on the
// next sign-in.
func (s *UserService) EnsureAccount(ctx context.Context, user types.User) {
	if _, err := s.repo.Upsert(ctx, user); err != nil {
		s.logger.Warn("failed to upsert account on sign-in",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
}

// ResolveRole returns the server-authoritative role for the email.
// Accounts without a record resolve to the plain user role.
func (s *UserService) ResolveRole(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.RoleUser, nil
		}
		return "", err
	}
	if user.Role == "" {
		return types.RoleUser, nil
	}
	return user.Role, nil
}

func (s *UserService) SetRole(ctx context.Context, id int, role string) error {
	return s.repo.SetRole(ctx, id, role)
}

// MarkSubscribed flips the subscription flag after a confirmed payment.
// It reports false when the account was already subscribed.
func (s *UserService) MarkSubscribed(ctx context.Context, email string) (bool, error) {
	return s.repo.MarkSubscribed(ctx, email)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
