package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/models"
	"github.com/princinho/weatherbackend/utils"
)

const invalidCredentials = "invalid credentials"

// AuthService owns user accounts.
type AuthService struct {
	users            database.UserStore
	tokens           *TokenService
	allowAdminSignup bool
	logger           *slog.Logger
}

func NewAuthService(users database.UserStore, tokens *TokenService, allowAdminSignup bool, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:            users,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		logger:           logger,
	}
}

// Register creates a self-service account. Elevated accounts are refused
// unless admin signup is enabled.
func (s *AuthService) Register(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	if admin && !s.allowAdminSignup {
		return nil, common.Forbidden("Admin accounts cannot be self-registered")
	}
	return s.CreateUser(ctx, username, password, admin)
}

// CreateUser inserts a user with an explicit admin flag.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, common.BadRequest("Missing username or password")
	}

	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, common.Conflict("Username already exists")
	case !errors.Is(err, database.ErrNotFound):
		s.logger.ErrorContext(ctx, "lookup user failed", "username", username, "error", err)
		return nil, common.Storage("lookup user", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, common.ErrBadRequest) {
			return nil, err
		}
		return nil, common.Storage("hash password", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Admin:        admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, common.Conflict("Username already exists")
		}
		s.logger.ErrorContext(ctx, "insert user failed", "username", username, "error", err)
		return nil, common.Storage("insert user", err)
	}
	s.logger.InfoContext(ctx, "user registered", "username", username, "admin", admin)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", common.Unauthorized("Missing login credentials")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", common.Unauthorized(invalidCredentials)
		}
		return "", common.Storage("lookup user", err)
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return "", common.Unauthorized(invalidCredentials)
	}
	return s.tokens.Issue(user.Username, user.Admin, s.tokens.Now())
}

// ChangePassword replaces the password of username after checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return common.NotFound("User not found")
		}
		return common.Storage("lookup user", err)
	}
	if err := utils.CheckPassword(user.PasswordHash, current); err != nil {
		return common.Unauthorized("current password is incorrect")
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		if errors.Is(err, common.ErrBadRequest) {
			return err
		}
		return common.Storage("hash password", err)
	}
	n, err := s.users.UpdatePassword(ctx, username, hash)
	if err != nil {
		return common.Storage("update password", err)
	}
	if n == 0 {
		return common.NotFound("User not found")
	}
	return nil
}
