package app

import (
	"context"
	"errors"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/password"
	"github.com/taskhub/taskhub/internal/repository"
)

// MustSeedAdminUser creates the bootstrap administrator when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured. An already existing
// user with that email is left untouched.
func MustSeedAdminUser() {
	adminCfg := config.Global().Admin
	if adminCfg.Email == "" || adminCfg.Password == "" {
		globalLogger.Debug().Msg("admin seeding not configured, skipping")
		return
	}

	ctx := context.Background()
	users := repository.NewUserRepository(globalLogger, globalPostgresPool)

	passwordHash, err := password.Hash(adminCfg.Password)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to hash admin password")
		panic(err)
	}

	admin, err := users.Insert(ctx, adminCfg.Email, passwordHash, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			globalLogger.Info().
				Str("email", adminCfg.Email).
				Msg("admin user already exists")
			return
		}

		globalLogger.Error().
			Err(err).
			Msg("failed to seed admin user")
		panic(err)
	}

	globalLogger.Info().
		Int64("user_id", admin.ID).
		Str("email", admin.Email).
		Msg("seeded admin user")
}
