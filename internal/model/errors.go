package model

import "strings"

// FieldError is one violation found while validating a part, material, or
// setting.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every FieldError found during validation; it
// never short-circuits on the first problem.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// ConfigError is returned by Settings.Validate (and so by
// Optimizer.Optimize before any placement) when a value is structurally
// invalid (e.g. maxChainLength < 2).
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// LogicFault signals a violated internal invariant (e.g. the completeness
// guarantee of the placement engine). It is never expected in a correct
// implementation and indicates a bug, not a user-correctable condition.
type LogicFault struct {
	Message string
}

func (e *LogicFault) Error() string { return "logic fault: " + e.Message }

// Warning is a non-fatal, accumulated diagnostic.
type Warning struct {
	Kind    string
	Message string
	Fields  map[string]any
}
