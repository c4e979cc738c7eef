package service

import (
	"errors"
	"strings"

	"github.com/critics-hub/yamdb/internal/audit"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/permissions"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/validators"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("role must be one of: user, moderator, admin")

// UserPatch carries a partial profile update. Nil fields stay untouched.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService struct {
	userRepo *repository.UserRepository
	trail    *audit.Trail
}

func NewUserService(userRepo *repository.UserRepository, trail *audit.Trail) *UserService {
	return &UserService{
		userRepo: userRepo,
		trail:    trail,
	}
}

func (s *UserService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) List(search string, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.List(search, page, pageSize)
}

// Create is the admin path: the account is usable immediately and obtains
// its confirmation code through the regular signup endpoint later.
func (s *UserService) Create(actor *models.User, email, username string, patch UserPatch) (*models.User, error) {
	if err := validators.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validators.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}
	if err := s.applyPatch(actor, user, patch); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(actor, "user.create", username)

	logger.Log.Info("User created by admin",
		zap.String("admin", actor.Username),
		zap.String("username", username),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// UpdateSelf applies a partial update to the actor's own profile. A role
// change by a plain user is silently coerced back to the current role.
func (s *UserService) UpdateSelf(actor *models.User, patch UserPatch) (*models.User, error) {
	user, err := s.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}

	if patch.Role != nil && !permissions.CanAssignRole(user) {
		// Silent coercion, not an error: the field is simply ignored.
		logger.Log.Debug("Role change by plain user ignored",
			zap.String("username", user.Username),
			zap.String("requested_role", *patch.Role),
		)
		patch.Role = nil
	}

	if err := s.applyPatch(user, user, patch); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to update profile",
			zap.String("username", user.Username),
			zap.Error(err),
		)
		return nil, err
	}

	return user, nil
}

// UpdateByUsername is the admin path; the actor may set any valid role.
func (s *UserService) UpdateByUsername(actor *models.User, username string, patch UserPatch) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if err := s.applyPatch(actor, user, patch); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to update user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(actor, "user.update", username)

	return user, nil
}

func (s *UserService) DeleteByUsername(actor *models.User, username string) error {
	if err := s.userRepo.DeleteByUsername(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.record(actor, "user.delete", username)

	logger.Log.Info("User deleted",
		zap.String("admin", actor.Username),
		zap.String("username", username),
	)

	return nil
}

// applyPatch validates and applies patch fields onto user. The roleActor
// decides whether a role value is honored.
func (s *UserService) applyPatch(roleActor *models.User, user *models.User, patch UserPatch) error {
	if patch.Username != nil && *patch.Username != user.Username {
		if err := validators.ValidateUsername(*patch.Username); err != nil {
			return err
		}
		other, err := s.userRepo.GetByUsername(*patch.Username)
		if err != nil {
			return err
		}
		if other != nil && other.ID != user.ID {
			return ErrUsernameTaken
		}
		user.Username = *patch.Username
	}

	if patch.Email != nil && *patch.Email != user.Email {
		if err := validators.ValidateEmail(*patch.Email); err != nil {
			return err
		}
		other, err := s.userRepo.GetByEmail(*patch.Email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != user.ID {
			return ErrEmailTaken
		}
		user.Email = *patch.Email
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}

	if patch.Role != nil {
		role := models.Role(strings.ToLower(*patch.Role))
		if !role.Valid() {
			return ErrInvalidRole
		}
		if permissions.CanAssignRole(roleActor) {
			user.Role = role
		}
		// Otherwise the requested role is dropped on the floor.
	}

	return nil
}

func (s *UserService) record(actor *models.User, action, resource string) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Write(audit.Record{
		Actor:    actor.Username,
		Action:   action,
		Resource: resource,
	}); err != nil {
		logger.Log.Warn("Audit write failed", zap.String("action", action), zap.Error(err))
	}
}
