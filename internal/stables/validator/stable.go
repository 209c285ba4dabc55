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

type StableValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStableValidator(log *logger.Logger) *StableValidator {
	v := validator.New()

	if err := v.RegisterValidation("day_time", ValidateDayTime); err != nil {
		log.Fatal("Failed to register 'day_time' validator", "error", err)
	}

	return &StableValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateDayTime accepts wall-clock times in HH:MM form.
func ValidateDayTime(fl validator.FieldLevel) bool {
	return dayTimeRegex.MatchString(fl.Field().String())
}

func (v *StableValidator) Validate(stable *model.Stable) error {
	if err := v.validate.Struct(stable); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return TranslateValidationErrors(validationErrs)
		}
		return err
	}

	seen := map[string]bool{}
	for _, rate := range stable.Rates {
		if seen[rate.Unit] {
			return ValidationErrors{
				ValidationError{
					Field:   "Rates",
					Message: fmt.Sprintf("duplicate rate unit %q", rate.Unit),
				},
			}
		}
		seen[rate.Unit] = true
	}

	return nil
}

func (v *StableValidator) ValidateUpdate(update *model.StableUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return TranslateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// TranslateValidationErrors maps validator tags to readable field errors.
// Shared by the stables validators; the other domains carry their own copy
// of the tag set they use.
func TranslateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +4915123456789)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
