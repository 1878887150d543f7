package posts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxContentLength is the maximum post length in characters
const MaxContentLength = 10000

// NewValidator returns the validator used for post requests
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// normalizeContent trims surrounding whitespace and validates the result
func normalizeContent(v *validator.Validate, req any, content *string) error {
	*content = strings.TrimSpace(*content)

	if err := v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("failed to validate request: %w", err)
		}
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return NewValidationError("content", "content is required")
		case "max":
			return NewValidationError("content", fmt.Sprintf("content must be at most %d characters", MaxContentLength))
		default:
			return NewValidationError("content", fe.Error())
		}
	}
	return nil
}

func validateActor(actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return ErrUnauthenticated
	}
	return nil
}
