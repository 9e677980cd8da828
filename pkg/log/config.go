package log

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the only document version understood by this package.
const SchemaVersion = 1

// Handler classes shipped with the runtime.
const (
	ClassStream            = "logging.StreamHandler"
	ClassFile              = "logging.FileHandler"
	ClassNull              = "logging.NullHandler"
	ClassRotatingFile      = "logging.handlers.RotatingFileHandler"
	ClassTimedRotatingFile = "logging.handlers.TimedRotatingFileHandler"
)

// Config is the declarative logging document.
type Config struct {
	Version                int                         `yaml:"version"`
	DisableExistingLoggers *bool                       `yaml:"disable_existing_loggers,omitempty"`
	Formatters             map[string]*FormatterConfig `yaml:"formatters,omitempty"`
	Handlers               map[string]*HandlerConfig   `yaml:"handlers,omitempty"`
	Loggers                map[string]*LoggerConfig    `yaml:"loggers,omitempty"`
	Root                   *RootConfig                 `yaml:"root,omitempty"`
}

// FormatterConfig is either a bare format string or a mapping.
type FormatterConfig struct {
	Format  string `yaml:"format,omitempty"`
	DateFmt string `yaml:"datefmt,omitempty"`
	Style   string `yaml:"style,omitempty"`

	scalar bool
}

type HandlerConfig struct {
	Class     string `yaml:"class"`
	Level     *Level `yaml:"level,omitempty"`
	Formatter string `yaml:"formatter,omitempty"`

	// stream handlers
	Stream string `yaml:"stream,omitempty"`

	// file handlers
	Filename string `yaml:"filename,omitempty"`
	Mode     string `yaml:"mode,omitempty"`
	Encoding string `yaml:"encoding,omitempty"`
	Delay    bool   `yaml:"delay,omitempty"`

	// rotation
	MaxBytes    int64  `yaml:"maxBytes,omitempty"`
	BackupCount int    `yaml:"backupCount,omitempty"`
	When        string `yaml:"when,omitempty"`
	Interval    int    `yaml:"interval,omitempty"`
	UTC         bool   `yaml:"utc,omitempty"`
}

type LoggerConfig struct {
	Level     *Level   `yaml:"level,omitempty"`
	Handlers  []string `yaml:"handlers,omitempty"`
	Propagate *bool    `yaml:"propagate,omitempty"`
}

type RootConfig struct {
	Level    *Level   `yaml:"level,omitempty"`
	Handlers []string `yaml:"handlers,omitempty"`
}

// NewFormatter returns a formatter that serializes as a bare string.
func NewFormatter(format string) *FormatterConfig {
	return &FormatterConfig{Format: format, scalar: true}
}

func (f *FormatterConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		f.Format = value.Value
		f.scalar = true
		return nil
	case yaml.MappingNode:
		type plain FormatterConfig
		var p plain
		if err := decodeStrict(value, &p); err != nil {
			return err
		}
		*f = FormatterConfig(p)
		f.scalar = false
		return nil
	default:
		return fmt.Errorf("line %d: formatter must be a string or a mapping", value.Line)
	}
}

func (f FormatterConfig) MarshalYAML() (interface{}, error) {
	if f.scalar && f.DateFmt == "" && f.Style == "" {
		return f.Format, nil
	}
	type plain FormatterConfig
	return plain(f), nil
}

// EffectiveDisableExisting reports the disable_existing_loggers flag, which
// defaults to true.
func (c *Config) EffectiveDisableExisting() bool {
	if c.DisableExistingLoggers == nil {
		return true
	}
	return *c.DisableExistingLoggers
}

// EffectivePropagate reports the propagate flag, which defaults to true.
func (l *LoggerConfig) EffectivePropagate() bool {
	if l.Propagate == nil {
		return true
	}
	return *l.Propagate
}

// Clone returns a deep copy of the document.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{Version: c.Version}
	if c.DisableExistingLoggers != nil {
		out.DisableExistingLoggers = ptr(*c.DisableExistingLoggers)
	}
	if c.Formatters != nil {
		out.Formatters = make(map[string]*FormatterConfig, len(c.Formatters))
		for name, f := range c.Formatters {
			if f == nil {
				out.Formatters[name] = nil
				continue
			}
			cp := *f
			out.Formatters[name] = &cp
		}
	}
	if c.Handlers != nil {
		out.Handlers = make(map[string]*HandlerConfig, len(c.Handlers))
		for name, h := range c.Handlers {
			if h == nil {
				out.Handlers[name] = nil
				continue
			}
			cp := *h
			if h.Level != nil {
				cp.Level = ptr(*h.Level)
			}
			out.Handlers[name] = &cp
		}
	}
	if c.Loggers != nil {
		out.Loggers = make(map[string]*LoggerConfig, len(c.Loggers))
		for name, l := range c.Loggers {
			if l == nil {
				out.Loggers[name] = nil
				continue
			}
			cp := LoggerConfig{Handlers: append([]string(nil), l.Handlers...)}
			if l.Level != nil {
				cp.Level = ptr(*l.Level)
			}
			if l.Propagate != nil {
				cp.Propagate = ptr(*l.Propagate)
			}
			out.Loggers[name] = &cp
		}
	}
	if c.Root != nil {
		cp := RootConfig{Handlers: append([]string(nil), c.Root.Handlers...)}
		if c.Root.Level != nil {
			cp.Level = ptr(*c.Root.Level)
		}
		out.Root = &cp
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
