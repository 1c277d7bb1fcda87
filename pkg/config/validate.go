package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/prinsights/prinsights/pkg/pattern"
)

var (
	configValidate *validator.Validate
	langPattern    = regexp.MustCompile(`(?i)^(en|ja)([-_].+)?$`)
)

func init() {
	configValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML names so errors match the file the user wrote.
	configValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = configValidate.RegisterValidation("glob", validateGlob)
	_ = configValidate.RegisterValidation("langcode", validateLangCode)
}

func validateGlob(fl validator.FieldLevel) bool {
	return pattern.Valid(fl.Field().String())
}

func validateLangCode(fl validator.FieldLevel) bool {
	return langPattern.MatchString(fl.Field().String())
}

// Validate checks cfg and returns the first problem as a *ConfigError.
func Validate(cfg *Config) error {
	return ValidateStruct(cfg)
}

// ValidateStruct validates any struct using the config validator, so other
// YAML files share the same tags and field paths.
func ValidateStruct(v any) error {
	err := configValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}
	return toConfigError(verrs[0])
}

func toConfigError(fe validator.FieldError) *ConfigError {
	field := fieldPath(fe.Namespace())
	value := fe.Value()

	var msg string
	switch fe.Tag() {
	case "gtfield":
		msg = fmt.Sprintf("%s (%v) must be greater than %s", field, value, strings.ToLower(fe.Param()))
	case "gte":
		msg = fmt.Sprintf("%s must be non-negative", field)
	case "glob":
		msg = fmt.Sprintf("Invalid glob pattern: %q", value)
	case "langcode":
		msg = "language must start with 'en' or 'ja' (e.g., 'en', 'en-US', 'ja', 'ja-JP')"
	case "oneof":
		msg = fmt.Sprintf("namespace policy must be one of: %s", fe.Param())
	case "required", "min":
		msg = fmt.Sprintf("%s is required", field)
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "len", "hexadecimal":
		msg = "color must be a 6-digit hex value without '#'"
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return NewConfigError(field, value, msg)
}

// fieldPath drops the root struct name from a validator namespace:
// "Config.size.thresholds.medium" becomes "size.thresholds.medium".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
