package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/critics-hub/yamdb/internal/mailer"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/utils"
	"github.com/critics-hub/yamdb/internal/validators"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUsernameTaken       = errors.New("a user with this username already exists")
	ErrEmailTaken          = errors.New("a user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrBadConfirmationCode = errors.New("incorrect confirmation code")
	ErrDeliveryFailed      = errors.New("failed to deliver confirmation code")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	sender        mailer.Sender
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(
	userRepo *repository.UserRepository,
	sender mailer.Sender,
	jwtSecret string,
	jwtExpiration time.Duration,
	environment string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sender:        sender,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// Signup registers an account (or re-issues a code for an existing one when
// both username and email match) and delivers a fresh confirmation code.
func (s *AuthService) Signup(ctx context.Context, email, username string) error {
	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := validators.ValidateUsername(username); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}
	if err := validators.ValidateEmail(email); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return err
	}

	byUsername, err := s.userRepo.GetByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence", zap.Error(err))
		return err
	}
	byEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence", zap.Error(err))
		return err
	}

	var user *models.User
	switch {
	case byUsername != nil && byUsername.Email == email:
		// Same person signing up again: re-issue the code. This is also
		// how admin-created accounts obtain their first code.
		user = byUsername
	case byUsername != nil:
		logger.Log.Warn("Username already exists", zap.String("username", username))
		return ErrUsernameTaken
	case byEmail != nil:
		logger.Log.Warn("Email already exists", zap.String("email", email))
		return ErrEmailTaken
	default:
		user = &models.User{
			ID:       uuid.New().String(),
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
	}

	code, err := utils.GenerateConfirmationCode()
	if err != nil {
		logger.Log.Error("Failed to generate confirmation code", zap.Error(err))
		return err
	}
	hash, err := utils.HashConfirmationCode(code)
	if err != nil {
		logger.Log.Error("Failed to hash confirmation code", zap.Error(err))
		return err
	}
	user.ConfirmationHash = hash

	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to save user",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	// Best-effort synchronous delivery: no retries, failure surfaces to
	// the caller and the user simply signs up again.
	if err := s.sender.Send(ctx, email, username, code); err != nil {
		logger.Log.Error("Failed to deliver confirmation code",
			zap.String("email", email),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	logger.Log.Info("Signup processed",
		zap.String("user_id", user.ID),
		zap.String("username", username),
	)

	return nil
}

// ObtainToken exchanges a username plus the exact confirmation code for a
// signed access token. A mismatch leaves the account unconfirmed.
func (s *AuthService) ObtainToken(username, code string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return "", err
	}
	if user == nil {
		logger.Log.Warn("Token request for unknown user",
			zap.String("username", username),
		)
		return "", ErrUserNotFound
	}

	if user.ConfirmationHash == "" {
		logger.Log.Warn("Token request before any confirmation code was issued",
			zap.String("username", username),
		)
		return "", ErrBadConfirmationCode
	}

	ok, err := utils.VerifyConfirmationCode(code, user.ConfirmationHash)
	if err != nil {
		logger.Log.Error("Failed to verify confirmation code",
			zap.String("username", username),
			zap.Error(err),
		)
		return "", err
	}
	if !ok {
		logger.Log.Warn("Confirmation code mismatch",
			zap.String("username", username),
		)
		return "", ErrBadConfirmationCode
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Info("Token issued",
		zap.String("user_id", user.ID),
		zap.String("username", username),
	)

	return token, nil
}
