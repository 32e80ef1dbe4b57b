package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors surfaced to handlers. Both carry deliberately
// little detail so responses cannot be used to probe which accounts
// or tokens exist.
var (
	ErrInvalidToken       = errors.New("invalid or already used confirmation token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports malformed or duplicate input field by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
