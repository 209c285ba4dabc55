package service

import (
	"context"
	userserrors "paddock/internal/users/errors"
	"paddock/internal/users/validator"
	"paddock/pkg/auth"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.User, error)
	updateFunc      func(ctx context.Context, id string, user *model.User) (*mongo.UpdateResult, error)
	deleteFunc      func(ctx context.Context, id string) error
	countFunc       func(ctx context.Context) (int64, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.User{}, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, user *model.User) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func newTestUserService(repo *mockUserRepository) UserService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(repo, validator.NewUserValidator(log), tokens, cfg)
}

func validUser() *model.User {
	return &model.User{
		Type:  model.UserTypeBuyer,
		Name:  "Greta Lindqvist",
		Email: "greta@example.com",
	}
}

func TestCreateUser_NormalizesEmail(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestUserService(repo)

	user := validUser()
	user.Email = "  Greta@Example.COM "

	if err := svc.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Email != "greta@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
}

func TestCreateUser_DefaultsSubscriptionToNone(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	user := validUser()
	if err := svc.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Subscription.Status != model.SubscriptionStatusNone {
		t.Errorf("expected subscription status none, got %q", user.Subscription.Status)
	}
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestUserService(repo)

	err := svc.Create(context.Background(), validUser())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}
}

func TestCreateUser_InvalidTypeRejected(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	user := validUser()
	user.Type = "admin"

	err := svc.Create(context.Background(), user)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateUser_MalformedPhoneRejected(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	user := validUser()
	user.Phone = "not a number"

	// the sanitizer empties an unusable phone, which the optional e164
	// tag then accepts as absent
	if err := svc.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Phone != "" {
		t.Errorf("expected phone cleared, got %q", user.Phone)
	}
}

func TestIssueToken_UnknownEmail(t *testing.T) {
	svc := newTestUserService(&mockUserRepository{})

	_, _, err := svc.IssueToken(context.Background(), "nobody@example.com")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestIssueToken_CarriesUserClaims(t *testing.T) {
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "507f1f77bcf86cd799439012", Type: model.UserTypeSeller, Email: email}, nil
		},
	}
	svc := newTestUserService(repo)

	token, user, err := svc.IssueToken(context.Background(), " Seller@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Type != model.UserTypeSeller {
		t.Errorf("expected seller, got %q", user.Type)
	}

	claims, err := auth.NewTokenManager("test-secret", time.Hour).Parse(token)
	if err != nil {
		t.Fatalf("failed to parse issued token: %v", err)
	}
	if claims.UserID != "507f1f77bcf86cd799439012" || claims.UserType != model.UserTypeSeller {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestUpdateUser_MergesFields(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			u := validUser()
			u.ID = id
			u.Phone = "+4915123456789"
			return u, nil
		},
		updateFunc: func(ctx context.Context, id string, user *model.User) (*mongo.UpdateResult, error) {
			saved = user
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestUserService(repo)

	newName := "Greta L. Andersson"
	err := svc.Update(context.Background(), "507f1f77bcf86cd799439012", &model.UserUpdate{Name: newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Name != newName {
		t.Errorf("expected updated name, got %q", saved.Name)
	}
	if saved.Phone != "+4915123456789" {
		t.Errorf("expected phone preserved, got %q", saved.Phone)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo := &mockUserRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return userserrors.ErrNotFound
		},
	}
	svc := newTestUserService(repo)

	err := svc.Delete(context.Background(), "507f1f77bcf86cd799439012")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
