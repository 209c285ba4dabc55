package service

import (
	"context"
	"errors"
	"math"
	subserrors "paddock/internal/subscriptions/errors"
	"paddock/internal/subscriptions/repository"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// PurchaseRequest is the client payload for buying a plan. CardToken is a
// processor-issued single-use token, never raw card data.
type PurchaseRequest struct {
	UserID    string `json:"user_id"`
	PlanID    string `json:"plan_id"`
	CardToken string `json:"card_token"`
}

type PurchaseService interface {
	Purchase(ctx context.Context, req *PurchaseRequest) (*model.UserSubscription, error)
}

type purchaseService struct {
	plans   repository.PlanRepository
	billing repository.BillingRepository
	charger Charger
	cfg     *config.Config
}

func NewPurchaseService(plans repository.PlanRepository, billing repository.BillingRepository, charger Charger, cfg *config.Config) PurchaseService {
	return &purchaseService{
		plans:   plans,
		billing: billing,
		charger: charger,
		cfg:     cfg,
	}
}

// Purchase charges the discounted plan price, then records the payment and
// the new subscription state on the user in one transaction. The charge
// happens first; a processor decline leaves the user untouched.
func (s *purchaseService) Purchase(ctx context.Context, req *PurchaseRequest) (*model.UserSubscription, error) {
	if req.UserID == "" || req.PlanID == "" {
		return nil, apperrors.InvalidInput("user_id and plan_id are required")
	}
	if req.CardToken == "" {
		return nil, apperrors.InvalidInput("card_token is required")
	}

	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, mapPlanLookupError(err, req.PlanID)
	}

	user, err := s.billing.FindUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, subserrors.ErrUserNotFound) {
			return nil, apperrors.NotFoundWithID("User", req.UserID)
		}
		if errors.Is(err, subserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	price := plan.EffectivePrice()
	amount := int64(math.Round(price * 100))

	result, err := s.charger.Charge(ctx, amount, s.cfg.PaymentCurrency, req.CardToken, map[string]any{
		"user_id": user.ID,
		"plan_id": plan.ID,
		"purpose": "subscription",
	})
	if err != nil {
		s.cfg.Log.Error("Subscription charge failed", "user_id", user.ID, "plan_id", plan.ID, "error", err)
		return nil, apperrors.PaymentFailed("Payment could not be processed", err)
	}
	if !result.Paid {
		s.cfg.Log.Warn("Subscription charge declined",
			"user_id", user.ID,
			"plan_id", plan.ID,
			"failure_code", result.FailureCode,
			"failure_message", result.FailureMessage,
		)
		return nil, apperrors.PaymentFailed("Payment was declined", nil)
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, plan.DurationDays)
	sub := model.UserSubscription{
		PlanID:    plan.ID,
		Status:    model.SubscriptionStatusActive,
		ExpiresAt: &expiresAt,
	}
	record := model.PaymentRecord{
		Amount:    price,
		Currency:  s.cfg.PaymentCurrency,
		Reference: result.ID,
		Purpose:   "subscription",
		PaidAt:    now,
	}

	err = s.billing.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.billing.AppendPayment(sessCtx, user.ID, record); err != nil {
			return err
		}
		return s.billing.SetSubscription(sessCtx, user.ID, sub)
	})
	if err != nil {
		// the charge already went through; surface loudly so support can
		// reconcile against the processor dashboard
		s.cfg.Log.Error("Charge succeeded but subscription write failed",
			"user_id", user.ID,
			"plan_id", plan.ID,
			"charge_id", result.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to activate subscription", err)
	}

	s.cfg.Log.Info("Subscription activated",
		"user_id", user.ID,
		"plan_id", plan.ID,
		"charge_id", result.ID,
		"expires_at", expiresAt,
	)

	return &sub, nil
}
