package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
	"github.com/harentsoaR/telehealth-api/internal/utils"
)

// UserGuard runs the integrity checks that must pass before a user record
// is created or updated. The unique email index remains the final word;
// these checks exist to return DuplicateEmail before the write.
type UserGuard struct {
	users repository.UserRepository
	hash  func(string) (string, error)
	log   *zap.Logger
}

func NewUserGuard(users repository.UserRepository, logger *zap.Logger) *UserGuard {
	return &UserGuard{users: users, hash: utils.HashPassword, log: logger}
}

// OnCreate hashes the candidate's password in place. Accounts without a
// password (guest, federated) skip both the duplicate check and hashing.
func (g *UserGuard) OnCreate(ctx context.Context, candidate *models.User) error {
	if candidate.Password == "" {
		g.log.Debug("user create: no password provided, skipping password hashing")
		return nil
	}

	if candidate.Email != "" {
		_, err := g.users.FindByEmail(ctx, candidate.Email)
		switch {
		case err == nil:
			g.log.Info("user create: email already used")
			return apperrors.DuplicateEmail()
		case !errors.Is(err, repository.ErrNotFound):
			return apperrors.Internal("Failed to validate email", err)
		}
	}

	hashed, err := g.hashPassword(candidate.Password)
	if err != nil {
		return err
	}
	candidate.Password = hashed
	return nil
}

// OnUpdate hashes a changed password in place and, when the email changes,
// checks that no other user already has it. id may be zero when the caller
// does not know the record being updated.
func (g *UserGuard) OnUpdate(ctx context.Context, id primitive.ObjectID, changes *models.UserUpdate) error {
	if changes.Password != nil {
		hashed, err := g.hashPassword(*changes.Password)
		if err != nil {
			return err
		}
		changes.Password = &hashed
	}

	if changes.Email == nil {
		return nil
	}
	return g.checkDuplicateEmail(ctx, id, *changes.Email)
}

func (g *UserGuard) checkDuplicateEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	if !id.IsZero() {
		current, err := g.users.FindByID(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal("Failed to validate email", err)
		}
		if current != nil && current.Email == email {
			return nil
		}
	}

	others, err := g.users.FindOthersByEmail(ctx, email, id)
	if err != nil {
		return apperrors.Internal("Failed to validate email", err)
	}
	if len(others) > 0 {
		g.log.Info("user update: duplicate email found", zap.String("userId", id.Hex()))
		return apperrors.DuplicateEmail()
	}
	return nil
}

func (g *UserGuard) hashPassword(clear string) (string, error) {
	hashed, err := g.hash(clear)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.BadRequest("Password is too long")
	}
	if err != nil {
		g.log.Error("failed to hash password", zap.Error(err))
		return "", apperrors.Hashing(err)
	}
	return hashed, nil
}
