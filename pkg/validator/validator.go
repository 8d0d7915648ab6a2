package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/medassist/assistant-api/internal/model"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

// Validator wraps struct validation with domain date/time rules
// registered on top of the standard tag set.
type Validator struct {
	validate *validator.Validate
}

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("legacydate", func(fl validator.FieldLevel) bool {
		return model.ValidateDateString(fl.Field().String()) == nil
	})
	v.RegisterValidation("legacytime", func(fl validator.FieldLevel) bool {
		return timePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate checks the struct and converts tag failures into a
// validation error with a readable field list.
func (v *Validator) Validate(obj interface{}) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidation("invalid request", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperrors.NewValidation(
		fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", ")), err)
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(value interface{}, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		return apperrors.NewValidation(fmt.Sprintf("value %v fails %s", value, tag), err)
	}
	return nil
}
