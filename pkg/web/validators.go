package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// ParseOptionalGt reads an optional integer query parameter that must be greater than value.
// A missing parameter yields def.
func ParseOptionalGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value, def int64) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return int(def), true
	}
	intValue, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || !gt(value)(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int(intValue), true
}

// ParseOptionalBool reads an optional boolean query parameter, defaulting to false.
func ParseOptionalBool(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s value: %s", key, raw))
		return false, false
	}
	return b, true
}

// DecodeAndValidate decodes the JSON request body into dst and validates it.
// On failure it writes the 400 response (field errors under "validation_errors") and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
