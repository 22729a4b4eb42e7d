package insurance

import "fmt"

// ValidationError reports malformed or out-of-range input to a write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func policyholderNotFound(id string) error {
	return &NotFoundError{Kind: "policyholder", ID: id}
}
