package service

import (
	"context"
	"errors"
	userserrors "paddock/internal/users/errors"
	"paddock/internal/users/repository"
	"paddock/internal/users/validator"
	"paddock/pkg/auth"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"paddock/pkg/sanitizer"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
	Update(ctx context.Context, id string, updates *model.UserUpdate) error
	Delete(ctx context.Context, id string) error
	IssueToken(ctx context.Context, email string) (string, *model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *auth.TokenManager
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, tokens *auth.TokenManager, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User) error {
	s.applyDefaults(user)
	s.sanitize(user)

	if err := s.validator.Validate(user); err != nil {
		s.cfg.Log.Warn("User validation failed", "email", user.Email, "error", err)
		return apperrors.Validation("Invalid user input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created", "id", user.ID, "type", user.Type)
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserLookupError(err, id)
	}

	return user, nil
}

func (s *userService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}

func (s *userService) Update(ctx context.Context, id string, updates *model.UserUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapUserLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("User update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Email is already registered")
		}
		return mapUserLookupError(err, id)
	}

	s.cfg.Log.Info("User updated", "id", id)
	return nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUserLookupError(err, id)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}

// IssueToken exchanges a registered email for a signed bearer token.
func (s *userService) IssueToken(ctx context.Context, email string) (string, *model.User, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return "", nil, apperrors.InvalidInput("email is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return "", nil, apperrors.NotFound("No account for that email")
		}
		return "", nil, apperrors.Internal("Failed to look up account", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Type)
	if err != nil {
		s.cfg.Log.Error("Failed to sign token", "user_id", user.ID, "error", err)
		return "", nil, apperrors.Internal("Failed to issue token", err)
	}

	return token, user, nil
}

func (s *userService) applyDefaults(user *model.User) {
	if user.Subscription.Status == "" {
		user.Subscription.Status = model.SubscriptionStatusNone
	}
}

func (s *userService) sanitize(user *model.User) {
	user.Name = sanitizer.TrimAndNormalize(user.Name)
	user.Email = sanitizer.NormalizeEmail(user.Email)
	user.Phone = sanitizer.SanitizePhone(user.Phone)
	user.CompanyName = sanitizer.TrimAndNormalize(user.CompanyName)
	user.CompanyVATID = sanitizer.TrimAndNormalize(user.CompanyVATID)
}

func (s *userService) merge(existing *model.User, updates *model.UserUpdate) *model.User {
	merged := *existing

	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != nil {
		merged.Phone = *updates.Phone
	}
	if updates.CompanyName != nil {
		merged.CompanyName = *updates.CompanyName
	}
	if updates.CompanyVATID != nil {
		merged.CompanyVATID = *updates.CompanyVATID
	}

	return &merged
}

func mapUserLookupError(err error, id string) error {
	if errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, userserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	return apperrors.Internal("User lookup failed", err)
}
