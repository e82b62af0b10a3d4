package validation

import (
	"reflect"
	"strings"

	"ledgervault/internal/errors"
	"ledgervault/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MinNameLength     = 3
	MinPasswordLength = 6
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// singleton instance of the validator
var instance = NewValidator()

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("strict_email", validateStrictEmail)
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("trimmed_min", validateTrimmedMin)
	_ = v.RegisterValidation("idempotency_key", validateIdempotencyKey)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,strict_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterForm is the create-account form.
type RegisterForm struct {
	Name     string `json:"name" validate:"trimmed_min=3"`
	Email    string `json:"email" validate:"required,strict_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Struct validates a form and reports the first failure as a user-facing ValidationError.
// Field order follows the struct, which is also the order the forms are shown in.
func (v *Validator) Struct(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.NewValidation(errors.ValidationGeneral, "")
	}

	return toValidationError(fieldErrs[0])
}

// Email checks a single email address with the dashboard's syntax rule.
func (v *Validator) Email(email string) error {
	if err := v.validate.Var(email, "required,strict_email"); err != nil {
		return errors.NewValidation(errors.ValidationInvalidEmail, "email")
	}
	return nil
}

// Amount checks a raw amount string.
func (v *Validator) Amount(raw string) error {
	if err := v.validate.Var(raw, "amount"); err != nil {
		return errors.NewValidation(errors.ValidationInvalidAmount, "amount")
	}
	return nil
}

func toValidationError(fe validator.FieldError) *errors.ValidationError {
	switch fe.Field() {
	case "name":
		return errors.NewValidation(errors.ValidationOutOfRange, "name", "Name must be at least 3 characters long.")
	case "email":
		return errors.NewValidation(errors.ValidationInvalidEmail, "email")
	case "password":
		return errors.NewValidation(errors.ValidationOutOfRange, "password", "Password must be at least 6 characters long.")
	case "amount":
		return errors.NewValidation(errors.ValidationInvalidAmount, "amount")
	default:
		return errors.NewValidation(errors.ValidationGeneral, fe.Field(), fe.Field()+" "+FormatFieldError(fe))
	}
}

// FormatFieldError converts a validator.FieldError to a human-readable message
func FormatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "strict_email", "email":
		return "must be a valid email address"
	case "min", "trimmed_min":
		return "must be at least " + fe.Param() + " characters long"
	case "amount":
		return "must be a positive amount with at most 2 decimal places"
	case "uuid", "idempotency_key":
		return "must be a valid UUID v4"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation for '" + fe.Tag() + "'"
	}
}

// Custom validation functions

func validateStrictEmail(fl validator.FieldLevel) bool {
	return models.IsValidEmail(strings.TrimSpace(fl.Field().String()))
}

// validateAmount accepts string or numeric fields holding a positive amount with at most 2 decimals
func validateAmount(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		_, err := models.ParseAmount(fl.Field().String())
		return err == nil
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	default:
		return false
	}
}

func validateTrimmedMin(fl validator.FieldLevel) bool {
	minLen := 0
	for _, r := range fl.Param() {
		if r < '0' || r > '9' {
			return false
		}
		minLen = minLen*10 + int(r-'0')
	}
	return len([]rune(strings.TrimSpace(fl.Field().String()))) >= minLen
}

func validateIdempotencyKey(fl validator.FieldLevel) bool {
	return IsCanonicalUUIDv4(fl.Field().String())
}
