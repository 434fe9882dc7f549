package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/princinho/weatherbackend/config"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/models"
)

// SeedAdminUser creates the configured admin account if it does not exist.
// It is a no-op when no admin credentials are configured.
func SeedAdminUser(ctx context.Context, users database.UserStore, cfg config.AdminConfig, logger *slog.Logger) error {
	username := NormalizeUsername(cfg.Username)
	pass := cfg.Password

	if username == "" || pass == "" {
		logger.Debug("admin seed skipped, ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}

	hash, err := HashPassword(pass)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := users.SeedAdmin(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		Admin:        true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if created {
		logger.Info("admin user seeded", "username", username)
	} else {
		logger.Info("admin user already exists", "username", username)
	}
	return nil
}
