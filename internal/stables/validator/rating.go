package validator

import (
	"errors"
	"paddock/pkg/model"

	"github.com/go-playground/validator/v10"
)

func (v *StableValidator) ValidateRating(submission *model.RatingSubmission) error {
	if err := v.validate.Struct(submission); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return TranslateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}
