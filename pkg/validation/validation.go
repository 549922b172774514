package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var (
	personNameRegex = regexp.MustCompile(`^[\p{L}]+(?: [\p{L}]+)*$`)
	nationalIDRegex = regexp.MustCompile(`^[0-9]{6,12}$`)

	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the project's custom rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(JSONTagName)
		Register(instance)
	})
	return instance
}

// Register adds the custom rules to v. It is also used for gin's binding validator.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
		return nationalIDRegex.MatchString(fl.Field().String())
	})
}

// Struct validates s and converts failures to an apperror validation error
func Struct(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		return ToAppError(err)
	}
	return nil
}

// ToAppError converts validator errors into field errors. Other errors
// become a bad request.
func ToAppError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperror.NewBadRequestError(err.Error())
	}
	fieldErrors := make([]apperror.FieldError, 0, len(ve))
	for _, fe := range ve {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   fieldName(fe),
			Message: message(fe),
		})
	}
	return apperror.NewValidationError(fieldErrors)
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return strings.ToLower(fe.StructField())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "personname":
		return "may only contain letters and single spaces"
	case "nationalid":
		return "must be 6 to 12 digits"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// JSONTagName reports struct fields by their json name
func JSONTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
