package xslog

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/x-thooh/geotech/pkg/log"
)

// Handler receives records that passed the logger's level and writes them
// somewhere. Implementations must be safe for concurrent use.
type Handler interface {
	Name() string
	Level() log.Level
	Handle(ctx context.Context, rec *Record) error
	Close() error
}

// HandlerFactory builds a handler for one entry of the handlers section.
type HandlerFactory func(env *BuildEnv) (Handler, error)

// BuildEnv carries everything a factory may need to build its handler.
type BuildEnv struct {
	Name      string
	Config    *log.HandlerConfig
	Formatter *Formatter

	now        func() time.Time
	baseDir    string
	streams    map[string]io.Writer
	onRollover func()
}

// Level is the handler's threshold; NOTSET passes everything.
func (e *BuildEnv) Level() log.Level {
	if e.Config.Level == nil {
		return log.LevelNotSet
	}
	return *e.Config.Level
}

// Path resolves the configured filename against the base directory.
func (e *BuildEnv) Path() string {
	p := e.Config.Filename
	if e.baseDir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(e.baseDir, p)
	}
	return p
}

func (e *BuildEnv) Now() time.Time {
	return e.now()
}

// Errorf locates err on field of the handler being built.
func (e *BuildEnv) Errorf(field string, err error) error {
	return &log.ConfigError{Section: "handlers", Name: e.Name, Field: field, Err: err}
}

func (e *BuildEnv) base() baseHandler {
	f := e.Formatter
	if f == nil {
		f = defaultFormatter
	}
	return baseHandler{name: e.Name, level: e.Level(), fmt: f}
}

var (
	classMu sync.RWMutex
	classes = make(map[string]HandlerFactory)
)

// RegisterClass makes a handler class available to documents. Registering
// an existing class replaces it.
func RegisterClass(class string, f HandlerFactory) {
	classMu.Lock()
	defer classMu.Unlock()
	classes[class] = f
}

// Classes lists the registered handler classes.
func Classes() []string {
	classMu.RLock()
	defer classMu.RUnlock()
	return sortedKeys(classes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func lookupClass(class string) (HandlerFactory, bool) {
	classMu.RLock()
	defer classMu.RUnlock()
	f, ok := classes[class]
	return f, ok
}

func init() {
	RegisterClass(log.ClassStream, newStreamHandler)
	RegisterClass(log.ClassFile, newFileHandler)
	RegisterClass(log.ClassNull, newNullHandler)
	RegisterClass(log.ClassRotatingFile, newRotatingFileHandler)
	RegisterClass(log.ClassTimedRotatingFile, newTimedRotatingFileHandler)
}

type baseHandler struct {
	name  string
	level log.Level
	fmt   *Formatter
}

func (b *baseHandler) Name() string {
	return b.name
}

func (b *baseHandler) Level() log.Level {
	return b.level
}

func (b *baseHandler) line(rec *Record) []byte {
	return []byte(b.fmt.Format(rec) + "\n")
}

// NullHandler discards everything.
type NullHandler struct {
	baseHandler
}

func newNullHandler(env *BuildEnv) (Handler, error) {
	return &NullHandler{baseHandler: env.base()}, nil
}

func (h *NullHandler) Handle(context.Context, *Record) error {
	return nil
}

func (h *NullHandler) Close() error {
	return nil
}
