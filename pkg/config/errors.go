package config

import "fmt"

// Level classifies how a configuration problem should be surfaced.
type Level string

const (
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// ConfigError is a validation failure on a single configuration field.
type ConfigError struct {
	Field   string
	Value   any
	Message string
	Level   Level
}

// NewConfigError returns a warning-level ConfigError.
func NewConfigError(field string, value any, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message, Level: LevelWarning}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}

// ParseError reports structured input that could not be decoded at all.
type ParseError struct {
	Input   string
	Message string
	Level   Level
}

// NewParseError returns a warning-level ParseError.
func NewParseError(input, message string) *ParseError {
	return &ParseError{Input: input, Message: message, Level: LevelWarning}
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Message
}
