package service

import "strings"

// ValidationError carries per-field validation failures. Handlers map it
// to a 400 with the field messages in the body.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
