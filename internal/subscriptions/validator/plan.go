package validator

import (
	"fmt"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type PlanValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewPlanValidator(log *logger.Logger) *PlanValidator {
	return &PlanValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *PlanValidator) Validate(plan *model.SubscriptionPlan) error {
	if err := v.validate.Struct(plan); err != nil {
		return translate(err)
	}
	return nil
}

func (v *PlanValidator) ValidateUpdate(update *model.SubscriptionPlanUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "mongodb":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid object ID", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
