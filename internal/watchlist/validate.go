package watchlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError 驗證失敗 (程式中止)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Validate checks struct tags and cross-entry constraints
func Validate(f *File) error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{Field: fieldPath(fe), Message: message(fe)}
		}
		return err
	}

	seen := make(map[string]int, len(f.Targets))
	for i, t := range f.Targets {
		if prev, dup := seen[t.ID]; dup {
			return ValidationError{
				Field:   fmt.Sprintf("targets[%d].id", i),
				Message: fmt.Sprintf("duplicate symbol %s (also targets[%d])", t.ID, prev),
			}
		}
		seen[t.ID] = i
	}

	return nil
}

// fieldPath turns "File.Targets[3].Strategy" into "targets[3].strategy"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return strings.ToLower(ns)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "numeric":
		return "must be numeric"
	case "min", "max":
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
