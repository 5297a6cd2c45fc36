package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/models"
)

// UserRepository persists users. Emails arrive already sanitized and
// lower-cased, so the unique index doubles as the case-insensitive
// uniqueness check.
type UserRepository interface {
	Insert(ctx context.Context, email, passwordHash, role string) (*models.User, error)
	SelectByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepositoryImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) UserRepository {
	return &userRepositoryImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (r *userRepositoryImpl) Insert(ctx context.Context, email, passwordHash, role string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	const insertUserQuery = `
INSERT INTO users (email,
                   password_hash,
                   role,
                   created_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	err := r.pgPool.QueryRow(
		ctx,
		insertUserQuery,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrEmailTaken
		}

		r.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	r.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	return user, nil
}

func (r *userRepositoryImpl) SelectByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{Email: email}

	const selectUserByEmailQuery = `
SELECT id,
       password_hash,
       role,
       created_at
FROM users
WHERE email = $1
`
	err := r.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		r.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}
	r.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user by email")

	return user, nil
}
