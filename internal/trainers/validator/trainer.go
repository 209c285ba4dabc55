package validator

import (
	"errors"
	"fmt"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var dayTimeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TrainerValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTrainerValidator(log *logger.Logger) *TrainerValidator {
	v := validator.New()

	if err := v.RegisterValidation("day_time", func(fl validator.FieldLevel) bool {
		return dayTimeRegex.MatchString(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'day_time' validator", "error", err)
	}

	return &TrainerValidator{
		validate: v,
		logger:   log,
	}
}

func (v *TrainerValidator) Validate(trainer *model.Trainer) error {
	if err := v.validate.Struct(trainer); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	// One schedule window per weekday keeps the booking math unambiguous.
	seen := map[string]bool{}
	for _, entry := range trainer.WeeklySchedule {
		if seen[entry.Day] {
			return ValidationErrors{
				ValidationError{
					Field:   "WeeklySchedule",
					Message: fmt.Sprintf("duplicate schedule entry for %s", entry.Day),
				},
			}
		}
		seen[entry.Day] = true
	}

	return nil
}

func (v *TrainerValidator) ValidateUpdate(update *model.TrainerUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *TrainerValidator) ValidateRating(submission *model.RatingSubmission) error {
	if err := v.validate.Struct(submission); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "day_time":
			message = fmt.Sprintf("%s must be a time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
