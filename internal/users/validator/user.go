package validator

import (
	"fmt"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *UserValidator) Validate(user *model.User) error {
	if err := v.validate.Struct(user); err != nil {
		return translate(err)
	}
	return nil
}

func (v *UserValidator) ValidateUpdate(update *model.UserUpdate) error {
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
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "e164":
			msgs = append(msgs, fmt.Sprintf("%s must be an international phone number like +4915123456789", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "iso4217":
			msgs = append(msgs, fmt.Sprintf("%s must be a currency code", fe.Field()))
		case "mongodb":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid object ID", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
