package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/password"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/validation"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  repository.UserRepository
}

func NewAuthService(logger zerolog.Logger, users repository.UserRepository) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, email, plainPassword string) (*models.User, error) {
	email = strings.ToLower(validation.Sanitize(email))

	if ok, reason := validation.Email(email); !ok {
		return nil, newValidationError("email", reason)
	}
	if ok, reason := validation.Password(plainPassword); !ok {
		return nil, newValidationError("password", reason)
	}

	passwordHash, err := password.Hash(plainPassword)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, storageError(err)
	}

	user, err := s.users.Insert(ctx, email, passwordHash, models.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, storageError(err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, plainPassword string) (*models.User, error) {
	email = strings.ToLower(validation.Sanitize(email))

	user, err := s.users.SelectByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn().
				Str("email", email).
				Msg("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by email")
		return nil, storageError(err)
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		s.logger.Warn().
			Int64("user_id", user.ID).
			Msg("login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("logged in")
	return user, nil
}
