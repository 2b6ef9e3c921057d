package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var dateLabelRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	// datelabel: calendar day in YYYY-MM-DD form, used by report requests
	_ = v.RegisterValidation("datelabel", func(fl validator.FieldLevel) bool {
		return dateLabelRe.MatchString(fl.Field().String())
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
