package editions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"epaper-app/internal/store"
)

var (
	// ErrNotFound is returned when the primary row of an operation is missing.
	ErrNotFound  = store.ErrNotFound
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a caller-correctable failure. Fields maps an input name to
// human readable messages; Blockers carries publish readiness blockers.
type ValidationError struct {
	Fields   map[string][]string
	Blockers []string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0 && len(e.Blockers) == 0
}

func invalid(field, format string, args ...any) *ValidationError {
	ve := &ValidationError{}
	ve.add(field, fmt.Sprintf(format, args...))
	return ve
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
