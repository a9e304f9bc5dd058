package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once

	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Get returns the shared validator with the custom tags registered
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// report json field names instead of Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("phone", validatePhone)
		_ = validate.RegisterValidation("future", validateFuture)
		_ = validate.RegisterValidation("user_role", validateUserRole)
		_ = validate.RegisterValidation("price_band", validatePriceBand)
		_ = validate.RegisterValidation("time_window", validateTimeWindow)
	})
	return validate
}

// ValidateStruct validates s and returns a *ValidationError for field failures
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return NewValidationError(verrs)
	}
	return err
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "passenger", "driver":
		return true
	}
	return false
}

func validatePriceBand(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "under-500", "500-1000", "1000-2000", "above-2000":
		return true
	}
	return false
}

func validateTimeWindow(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "morning", "afternoon", "evening", "night", "next-2-hours", "today", "tomorrow":
		return true
	}
	return false
}
