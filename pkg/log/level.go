package log

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is a logging severity on the classic numeric ladder.
type Level int

const (
	LevelNotSet   Level = 0
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

var levelNames = map[Level]string{
	LevelNotSet:   "NOTSET",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

var levelAliases = map[string]Level{
	"NOTSET":   LevelNotSet,
	"DEBUG":    LevelDebug,
	"INFO":     LevelInfo,
	"WARNING":  LevelWarning,
	"WARN":     LevelWarning,
	"ERROR":    LevelError,
	"CRITICAL": LevelCritical,
	"FATAL":    LevelCritical,
}

// Levels returns the named levels in ascending order.
func Levels() []Level {
	return []Level{LevelNotSet, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	if l, ok := levelAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return LevelNotSet, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Known reports whether l is one of the named levels.
func (l Level) Known() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", int(l))
}

// Slog maps the level onto the slog scale (DEBUG=-4 ... CRITICAL=12).
func (l Level) Slog() slog.Level {
	return slog.Level((int(l) - int(LevelInfo)) * 4 / 10)
}

// FromSlog is the inverse of Level.Slog.
func FromSlog(l slog.Level) Level {
	n := int(l)*10/4 + int(LevelInfo)
	if n < 0 {
		n = 0
	}
	return Level(n)
}

func (l Level) MarshalYAML() (interface{}, error) {
	if name, ok := levelNames[l]; ok {
		return name, nil
	}
	return int(l), nil
}

func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", value.Line, ErrInvalidLevel)
	}
	parsed, err := ParseLevel(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*l = parsed
	return nil
}
