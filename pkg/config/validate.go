// Package config holds the configuration sections shared by the shop's entrypoints. Sections are
// decoded by koanf and checked with validator tags; errors name the offending koanf key.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sectionValidator = newSectionValidator()

func newSectionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateSection checks the validate tags of section and reports failures as "<key>.<field>".
func validateSection(key string, section any) error {
	err := sectionValidator.Struct(section)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// the namespace starts with the Go type name, replace it with the koanf key
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s.%s must satisfy %s, got %v", key, field, rule, fe.Value()))
	}
	return fmt.Errorf("invalid %s configuration: %s", key, strings.Join(msgs, "; "))
}

// describe renders a section as "key: value" lines for the startup log.
func describe(title string, kv ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, "  %v: %v\n", kv[i], kv[i+1])
	}
	return b.String()
}

// Mask hides a secret in printed configuration.
func Mask(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	return "****"
}
