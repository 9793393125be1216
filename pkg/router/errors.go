package router

import (
	"fmt"
	"strings"
)

// ConfigError reports a user-fixable routes misconfiguration. It is fatal to
// the compilation pass and names the conflicting locations so the source tree
// can be corrected.
type ConfigError struct {
	Message   string
	Locations []string
}

func (e *ConfigError) Error() string {
	if len(e.Locations) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, strings.Join(e.Locations, ", "))
}

// InternalError reports a defect in the compiler itself, not in the input.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal router error: " + e.Message
}

// MultiError wraps every configuration error found during validation, so a
// single pass reports all conflicts at once.
type MultiError struct {
	Errors []*ConfigError
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route configuration errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}
