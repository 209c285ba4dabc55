package service

import (
	"context"
	"errors"
	subserrors "paddock/internal/subscriptions/errors"
	"paddock/internal/subscriptions/repository"
	"paddock/internal/subscriptions/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"paddock/pkg/sanitizer"
	"sync"
)

type PlanService interface {
	Create(ctx context.Context, plan *model.SubscriptionPlan) error
	GetByID(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.SubscriptionPlan, int64, error)
	Update(ctx context.Context, id string, updates *model.SubscriptionPlanUpdate) error
	Delete(ctx context.Context, id string) error
}

type planService struct {
	repo      repository.PlanRepository
	validator *validator.PlanValidator
	cfg       *config.Config
}

func NewPlanService(repo repository.PlanRepository, validator *validator.PlanValidator, cfg *config.Config) PlanService {
	return &planService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *planService) Create(ctx context.Context, plan *model.SubscriptionPlan) error {
	plan.Name = sanitizer.TrimAndNormalize(plan.Name)

	if err := s.validator.Validate(plan); err != nil {
		s.cfg.Log.Warn("Plan validation failed", "name", plan.Name, "error", err)
		return apperrors.Validation("Invalid plan input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		s.cfg.Log.Error("Failed to create plan", "name", plan.Name, "error", err)
		return apperrors.Internal("Failed to create plan", err)
	}

	s.cfg.Log.Info("Subscription plan created", "id", plan.ID, "name", plan.Name)
	return nil
}

func (s *planService) GetByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Plan ID cannot be empty")
	}

	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPlanLookupError(err, id)
	}

	return plan, nil
}

func (s *planService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.SubscriptionPlan, int64, error) {

	var count int64
	var plans []*model.SubscriptionPlan
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count plans", "error", errCount)
			errCount = apperrors.Internal("Failed to count plans", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		plans, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list plans", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve plans", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return plans, count, nil
}

func (s *planService) Update(ctx context.Context, id string, updates *model.SubscriptionPlanUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Plan ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapPlanLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Plan update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		return mapPlanLookupError(err, id)
	}

	s.cfg.Log.Info("Subscription plan updated", "id", id)
	return nil
}

func (s *planService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Plan ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapPlanLookupError(err, id)
	}

	s.cfg.Log.Info("Subscription plan deleted", "id", id)
	return nil
}

func (s *planService) merge(existing *model.SubscriptionPlan, updates *model.SubscriptionPlanUpdate) *model.SubscriptionPlan {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.TrimAndNormalize(updates.Name)
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.DiscountPct != nil {
		merged.DiscountPct = *updates.DiscountPct
	}
	if updates.DurationDays != nil {
		merged.DurationDays = *updates.DurationDays
	}
	if updates.Features != nil {
		merged.Features = *updates.Features
	}

	return &merged
}

func mapPlanLookupError(err error, id string) error {
	if errors.Is(err, subserrors.ErrPlanNotFound) {
		return apperrors.NotFoundWithID("Plan", id)
	}
	if errors.Is(err, subserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid plan ID format")
	}
	return apperrors.Internal("Plan lookup failed", err)
}
