package xslog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/util"
)

const rootName = "root"

// Manager owns the logger hierarchy and the handlers built from the active
// logging document.
type Manager struct {
	mu       sync.RWMutex
	opts     *options
	metrics  *metrics
	start    time.Time
	root     *Logger
	loggers  *util.SafeMap[string, *Logger]
	handlers map[string]Handler
	cfg      *log.Config

	errMu sync.Mutex
}

// NewManager returns an unconfigured hierarchy: root at WARNING and no handlers.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	m := &Manager{
		opts:     o,
		metrics:  newMetrics(o.reg),
		start:    o.clock(),
		loggers:  util.NewSafeMap[string, *Logger](),
		handlers: map[string]Handler{},
	}
	m.root = &Logger{mgr: m, name: rootName, node: &node{level: log.LevelWarning}}
	return m
}

// Configure builds a manager from cfg.
func Configure(cfg *log.Config, opts ...Option) (*Manager, error) {
	m := NewManager(opts...)
	if err := m.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Root returns the root logger.
func (m *Manager) Root() *Logger {
	return m.root
}

// GetLogger returns the logger for a dotted name, creating it on first use.
// The empty name and "root" address the root logger.
func (m *Manager) GetLogger(name string) *Logger {
	if name == "" || name == rootName {
		return m.root
	}
	lg, _ := m.loggers.GetOrSet(name, func() *Logger {
		return &Logger{mgr: m, name: name, node: &node{propagate: true}}
	})
	return lg
}

// Handler returns a handler of the active configuration by name.
func (m *Manager) Handler(name string) (Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handlers[name]
	return h, ok
}

// Config returns a copy of the active document, nil before the first
// successful configuration.
func (m *Manager) Config() *log.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone()
}

// Reconfigure replaces the active configuration. The new handlers are built
// before anything is touched, so on error the old configuration stays.
func (m *Manager) Reconfigure(cfg *log.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil logging config", log.ErrMissingField)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	handlers, err := m.build(cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.handlers
	m.apply(cfg, handlers)
	m.mu.Unlock()

	closeHandlers(old)
	return nil
}

// Close closes every handler and detaches them from the hierarchy.
func (m *Manager) Close() error {
	m.mu.Lock()
	old := m.handlers
	m.handlers = map[string]Handler{}
	m.root.node.handlers = nil
	for _, name := range m.loggers.Keys() {
		if lg, ok := m.loggers.Get(name); ok {
			lg.node.handlers = nil
		}
	}
	m.mu.Unlock()
	return closeHandlers(old)
}

func (m *Manager) build(cfg *log.Config) (map[string]Handler, error) {
	formatters := make(map[string]*Formatter, len(cfg.Formatters))
	for _, name := range sortedKeys(cfg.Formatters) {
		fc := cfg.Formatters[name]
		f, err := NewFormatter(fc.Format, fc.DateFmt, m.start)
		if err != nil {
			return nil, &log.ConfigError{Section: "formatters", Name: name, Field: "format", Err: err}
		}
		formatters[name] = f
	}

	handlers := make(map[string]Handler, len(cfg.Handlers))
	for _, name := range sortedKeys(cfg.Handlers) {
		hc := cfg.Handlers[name]
		factory, ok := lookupClass(hc.Class)
		if !ok {
			closeHandlers(handlers)
			return nil, &log.ConfigError{Section: "handlers", Name: name, Field: "class",
				Err: fmt.Errorf("%w: %q", log.ErrUnknownClass, hc.Class)}
		}
		env := &BuildEnv{
			Name:       name,
			Config:     hc,
			Formatter:  formatters[hc.Formatter],
			now:        m.opts.clock,
			baseDir:    m.opts.baseDir,
			streams:    m.opts.streams,
			onRollover: m.metrics.rollovers.WithLabelValues(name).Inc,
		}
		h, err := factory(env)
		if err != nil {
			closeHandlers(handlers)
			var ce *log.ConfigError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, env.Errorf("", err)
		}
		handlers[name] = h
	}
	return handlers, nil
}

// apply installs cfg; callers hold m.mu.
func (m *Manager) apply(cfg *log.Config, handlers map[string]Handler) {
	resolve := func(refs []string) []Handler {
		out := make([]Handler, 0, len(refs))
		for _, ref := range refs {
			out = append(out, handlers[ref])
		}
		return out
	}

	existing := m.loggers.Keys()
	for name, lc := range cfg.Loggers {
		if lc == nil {
			lc = &log.LoggerConfig{}
		}
		n := m.GetLogger(name).node
		n.level = log.LevelNotSet
		if lc.Level != nil {
			n.level = *lc.Level
		}
		n.handlers = resolve(lc.Handlers)
		n.propagate = lc.EffectivePropagate()
		n.disabled = false
	}

	disable := cfg.EffectiveDisableExisting()
	for _, name := range existing {
		if _, ok := cfg.Loggers[name]; ok {
			continue
		}
		lg, ok := m.loggers.Get(name)
		if !ok {
			continue
		}
		lg.node.level = log.LevelNotSet
		lg.node.handlers = nil
		lg.node.propagate = true
		lg.node.disabled = disable && !childOfConfigured(name, cfg.Loggers)
	}

	m.root.node.level = log.LevelWarning
	m.root.node.handlers = nil
	if cfg.Root != nil {
		if cfg.Root.Level != nil {
			m.root.node.level = *cfg.Root.Level
		}
		m.root.node.handlers = resolve(cfg.Root.Handlers)
	}

	m.handlers = handlers
	m.cfg = cfg.Clone()
}

func childOfConfigured(name string, configured map[string]*log.LoggerConfig) bool {
	for _, p := range parentNames(name) {
		if _, ok := configured[p]; ok {
			return true
		}
	}
	return false
}

// parentLocked returns the nearest existing ancestor of name.
func (m *Manager) parentLocked(name string) *Logger {
	if name == rootName {
		return nil
	}
	for _, p := range parentNames(name) {
		if lg, ok := m.loggers.Get(p); ok {
			return lg
		}
	}
	return m.root
}

func (m *Manager) effectiveLevelLocked(name string, n *node) log.Level {
	for {
		if n.level != log.LevelNotSet {
			return n.level
		}
		p := m.parentLocked(name)
		if p == nil {
			return log.LevelNotSet
		}
		name, n = p.name, p.node
	}
}

// dispatch hands rec to every handler on the propagation chain of lg.
func (m *Manager) dispatch(ctx context.Context, lg *Logger, rec *Record) {
	m.metrics.records.WithLabelValues(rec.Name, rec.Level.String()).Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	found := 0
	name, n := lg.name, lg.node
	for {
		for _, h := range n.handlers {
			found++
			if rec.Level < h.Level() {
				continue
			}
			if err := h.Handle(ctx, rec); err != nil {
				m.handleError(h, rec, err)
			}
		}
		if !n.propagate {
			break
		}
		p := m.parentLocked(name)
		if p == nil {
			break
		}
		name, n = p.name, p.node
	}
	if found == 0 && rec.Level >= log.LevelWarning {
		m.lastResort(rec)
	}
}

func (m *Manager) lastResort(rec *Record) {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	_, _ = io.WriteString(m.opts.errOut, defaultFormatter.Format(rec)+"\n")
}

func (m *Manager) handleError(h Handler, rec *Record, err error) {
	m.metrics.errors.WithLabelValues(h.Name()).Inc()

	var b strings.Builder
	b.WriteString("--- Logging error ---\n")
	fmt.Fprintf(&b, "handler %s: %v\n", h.Name(), err)
	fmt.Fprintf(&b, "Message: %q\n", rec.Message)
	fmt.Fprintf(&b, "Logger: %s, level %s\n", rec.Name, rec.Level)

	m.errMu.Lock()
	defer m.errMu.Unlock()
	_, _ = io.WriteString(m.opts.errOut, b.String())
}

func closeHandlers(handlers map[string]Handler) error {
	var errs []error
	for _, name := range sortedKeys(handlers) {
		if err := handlers[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close handler %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
