package shared

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"okr/internal/transport/http/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validate runs struct-tag validation on payload and writes a 400 with
// per-field issues when it fails. Returns true when the request was
// rejected.
func Validate(w http.ResponseWriter, payload any, requestID string) bool {
	err := validate.Struct(payload)
	if err == nil {
		return false
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", requestID)
		return true
	}

	issues := make([]ValidationIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, ValidationIssue{
			Field:  strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Reason: reasonFor(fe),
		})
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
	return true
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
