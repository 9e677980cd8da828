package log

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

const (
	sectionDocument   = "document"
	sectionFormatters = "formatters"
	sectionHandlers   = "handlers"
	sectionLoggers    = "loggers"
	sectionRoot       = "root"
)

var fileClasses = map[string]bool{
	ClassFile:              true,
	ClassRotatingFile:      true,
	ClassTimedRotatingFile: true,
}

// ValidWhen reports whether s is a recognised rotation trigger:
// S, M, H, D, MIDNIGHT or W0..W6 (case-insensitive).
func ValidWhen(s string) bool {
	switch w := strings.ToUpper(s); w {
	case "S", "M", "H", "D", "MIDNIGHT":
		return true
	default:
		return len(w) == 2 && w[0] == 'W' && w[1] >= '0' && w[1] <= '6'
	}
}

// Validate checks the document's internal consistency and returns every
// violation found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(section, name, field string, err error) {
		errs = append(errs, newConfigError(section, name, field, err))
	}

	if c.Version != SchemaVersion {
		add(sectionDocument, "", "version", fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version))
	}

	for _, name := range sortedKeys(c.Formatters) {
		f := c.Formatters[name]
		if f == nil {
			add(sectionFormatters, name, "", ErrMissingField)
			continue
		}
		if f.Style != "" && f.Style != "%" {
			add(sectionFormatters, name, "style", fmt.Errorf("%w: only %%-style is supported, got %q", ErrInvalidFormat, f.Style))
		}
	}

	for _, name := range sortedKeys(c.Handlers) {
		h := c.Handlers[name]
		if h == nil {
			add(sectionHandlers, name, "class", ErrMissingField)
			continue
		}
		if h.Class == "" {
			add(sectionHandlers, name, "class", ErrMissingField)
		}
		if h.Formatter != "" {
			if _, ok := c.Formatters[h.Formatter]; !ok {
				add(sectionHandlers, name, "formatter", fmt.Errorf("%w: %q", ErrDanglingFormatter, h.Formatter))
			}
		}
		if err := checkLevel(h.Level); err != nil {
			add(sectionHandlers, name, "level", err)
		}
		if fileClasses[h.Class] && h.Filename == "" {
			add(sectionHandlers, name, "filename", ErrMissingField)
		}
		if h.Mode != "" && h.Mode != "a" && h.Mode != "w" {
			add(sectionHandlers, name, "mode", fmt.Errorf("%w: mode must be \"a\" or \"w\", got %q", ErrInvalidRotation, h.Mode))
		}
		if h.BackupCount < 0 {
			add(sectionHandlers, name, "backupCount", fmt.Errorf("%w: %d", ErrInvalidRotation, h.BackupCount))
		}
		if h.MaxBytes < 0 {
			add(sectionHandlers, name, "maxBytes", fmt.Errorf("%w: %d", ErrInvalidRotation, h.MaxBytes))
		}
		if h.Interval < 0 {
			add(sectionHandlers, name, "interval", fmt.Errorf("%w: %d", ErrInvalidRotation, h.Interval))
		}
		if h.Class == ClassTimedRotatingFile && h.When != "" && !ValidWhen(h.When) {
			add(sectionHandlers, name, "when", fmt.Errorf("%w: %q", ErrInvalidRotation, h.When))
		}
	}

	for _, name := range sortedKeys(c.Loggers) {
		l := c.Loggers[name]
		if name == "" || name == "root" {
			add(sectionLoggers, name, "", fmt.Errorf("%w: configure the root logger in the root section", ErrInvalidLoggerName))
			continue
		}
		if l == nil {
			continue
		}
		if err := checkLevel(l.Level); err != nil {
			add(sectionLoggers, name, "level", err)
		}
		for _, ref := range l.Handlers {
			if _, ok := c.Handlers[ref]; !ok {
				add(sectionLoggers, name, "handlers", fmt.Errorf("%w: %q", ErrDanglingHandler, ref))
			}
		}
	}

	if c.Root != nil {
		if err := checkLevel(c.Root.Level); err != nil {
			add(sectionRoot, "", "level", err)
		}
		for _, ref := range c.Root.Handlers {
			if _, ok := c.Handlers[ref]; !ok {
				add(sectionRoot, "", "handlers", fmt.Errorf("%w: %q", ErrDanglingHandler, ref))
			}
		}
	}

	return errors.Join(errs...)
}

func checkLevel(l *Level) error {
	if l == nil {
		return nil
	}
	if !l.Known() {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(*l))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
