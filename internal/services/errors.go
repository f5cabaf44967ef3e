package services

import (
	"fmt"

	"officehourlens/internal/models"
)

// ValidationError reports a missing or malformed request field.
// Validation always runs before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError reports a reference to an id that does not exist
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidTransitionError reports a lifecycle rule violation. The question is
// left unmodified.
type InvalidTransitionError struct {
	QuestionID int64
	From       models.QuestionStatus
	Op         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s question %d in status %q", e.Op, e.QuestionID, e.From)
}

// ConfigurationError reports a rejected settings write; the prior value is
// retained.
type ConfigurationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid value %q for setting %s: %s", e.Value, e.Key, e.Reason)
}
