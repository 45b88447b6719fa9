package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/observability"
	"github.com/ST1000-S/iTechies/internal/persistence"
	"github.com/ST1000-S/iTechies/internal/repository"
)

// Seeds a demo customer and provider so the app is usable right after
// boot. Re-running is safe: duplicates are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	users := repository.NewUserRepository(pg.PoolHandle())

	customerHash, err := auth.HashPassword("test123", cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}
	customer := domain.NewCustomer("John Customer", "customer@test.com", customerHash)
	seedUser(ctx, users, customer, logger)

	providerHash, err := auth.HashPassword("test123", cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}
	provider, err := domain.NewProvider(
		"Alice Technician",
		"provider@test.com",
		providerHash,
		[]string{"Laptop Repair", "Software Installation"},
		"New York, NY",
	)
	if err != nil {
		logger.Fatal("build provider", zap.Error(err))
	}
	seedUser(ctx, users, provider, logger)

	logger.Info("database seeded")
}

func seedUser(ctx context.Context, users repository.UserRepository, user *domain.User, logger *zap.Logger) {
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			logger.Info("user already seeded", zap.String("email", user.Email))
			return
		}
		logger.Fatal("seed user", zap.String("email", user.Email), zap.Error(err))
	}
	logger.Info("seeded user", zap.String("email", user.Email), zap.String("role", string(user.Role)))
}
