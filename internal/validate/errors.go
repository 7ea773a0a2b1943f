package validate

import (
	"errors"
	"strings"
)

// ErrInvalidJSON is returned when the request body is not parseable JSON.
// It is reported before any schema check runs.
var ErrInvalidJSON = errors.New("Invalid JSON in request body")

// FieldError is one failed constraint, addressed by its JSON path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors is an ordered list of field errors. A nil Errors means success.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *Errors) Add(path, message string) {
	*e = append(*e, FieldError{Path: path, Message: message})
}

// Err returns e as an error, or nil when it is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
