package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
	"github.com/harentsoaR/telehealth-api/internal/utils"
)

type UserService struct {
	users repository.UserRepository
	guard *UserGuard
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, guard *UserGuard, logger *zap.Logger) *UserService {
	return &UserService{users: users, guard: guard, log: logger}
}

func (s *UserService) Create(ctx context.Context, u *models.User) error {
	u.ApplyDefaults()
	if err := s.guard.OnCreate(ctx, u); err != nil {
		return err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return apperrors.DuplicateEmail()
		}
		return apperrors.Internal("Failed to create user", err)
	}
	s.log.Info("user created", zap.String("userId", u.ID.Hex()), zap.String("role", u.Role))
	return nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, changes *models.UserUpdate) (*models.User, error) {
	if len(changes.Fields()) == 0 {
		return nil, apperrors.BadRequest("No update fields provided")
	}
	if err := s.guard.OnUpdate(ctx, id, changes); err != nil {
		return nil, err
	}

	u, err := s.users.Update(ctx, id, changes.Fields())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("User not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, apperrors.DuplicateEmail()
	case err != nil:
		return nil, apperrors.Internal("Failed to update user", err)
	}
	return u, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords give the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	if u.Password == "" || !utils.CheckPasswordHash(password, u.Password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if u.Status == models.UserStatusNotApproved {
		return nil, apperrors.Forbidden("Account is not approved")
	}
	return u, nil
}
