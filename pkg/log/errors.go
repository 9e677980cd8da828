package log

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	ErrDanglingFormatter  = errors.New("formatter is not defined")
	ErrDanglingHandler    = errors.New("handler is not defined")
	ErrInvalidLevel       = errors.New("invalid level")
	ErrInvalidRotation    = errors.New("invalid rotation parameter")
	ErrUnknownClass       = errors.New("unknown handler class")
	ErrMissingField       = errors.New("missing required field")
	ErrUnwritablePath     = errors.New("log path is not writable")
	ErrInvalidFormat      = errors.New("invalid format string")
	ErrUnknownEncoding    = errors.New("unknown encoding")
	ErrUnknownStream      = errors.New("unknown stream")
	ErrInvalidLoggerName  = errors.New("invalid logger name")
)

// ConfigError locates a violation inside the logging document.
type ConfigError struct {
	Section string // formatters, handlers, loggers, root
	Name    string
	Field   string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(e.Section)
	if e.Name != "" {
		fmt.Fprintf(&b, "[%s]", e.Name)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ".%s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(section, name, field string, err error) *ConfigError {
	return &ConfigError{Section: section, Name: name, Field: field, Err: err}
}
