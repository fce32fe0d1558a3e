// Package validation checks form and store inputs with validator/v10 and
// returns *models.ValidationError with one message per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"almoxarifado/models"
)

var validate = newValidator()

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("access_level", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.LevelSuperAdmin, models.LevelAdmin, models.LevelLocalAdmin, models.LevelStockClerk, models.LevelViewer:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		return colorPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordPolicy(fl.Field().String()) == nil
	})
	return v
}

// Struct validates s and maps failures to a ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &models.ValidationError{Fields: fields}
}

// Field builds a single-field ValidationError.
func Field(name, msg string) error {
	return &models.ValidationError{Fields: map[string]string{name: msg}}
}

// PasswordPolicy enforces minimum length and a mix of letters and digits.
func PasswordPolicy(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return errors.New("password must contain letters and digits")
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "access_level":
		return "is not a valid access level"
	case "color":
		return "must be a #rrggbb color"
	case "password":
		if err := PasswordPolicy(fe.Value().(string)); err != nil {
			return strings.TrimPrefix(err.Error(), "password ")
		}
	}
	return "is invalid"
}
