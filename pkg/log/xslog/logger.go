package xslog

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/trace"
)

var _ log.Logger = (*Logger)(nil)

// node is the configurable state of one named logger, guarded by Manager.mu.
type node struct {
	level     log.Level
	handlers  []Handler
	propagate bool
	disabled  bool
}

// Logger is a named position in the dotted hierarchy. Values returned by
// With share the node of the logger they derive from.
type Logger struct {
	mgr   *Manager
	name  string
	node  *node
	attrs []slog.Attr
	skip  int
}

func (l *Logger) Name() string {
	return l.name
}

// With returns a logger that adds args (slog key/value pairs) to every record.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	cp := *l
	cp.attrs = append(append([]slog.Attr(nil), l.attrs...), argsToAttrs(args)...)
	return &cp
}

// AddCallerSkip returns a logger that reports the caller skip frames further
// up the stack, for wrappers that log on behalf of their own caller.
func (l *Logger) AddCallerSkip(skip int) *Logger {
	cp := *l
	cp.skip += skip
	return &cp
}

// EffectiveLevel is the level of the nearest ancestor, self included, whose
// level is not NOTSET.
func (l *Logger) EffectiveLevel() log.Level {
	l.mgr.mu.RLock()
	defer l.mgr.mu.RUnlock()
	return l.mgr.effectiveLevelLocked(l.name, l.node)
}

// Enabled reports whether a record at level would be created.
func (l *Logger) Enabled(level log.Level) bool {
	l.mgr.mu.RLock()
	defer l.mgr.mu.RUnlock()
	if l.node.disabled {
		return false
	}
	return level >= l.mgr.effectiveLevelLocked(l.name, l.node)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, log.LevelDebug, msg, args)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, log.LevelInfo, msg, args)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, log.LevelWarning, msg, args)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, log.LevelError, msg, args)
}

func (l *Logger) Critical(ctx context.Context, msg string, args ...any) {
	l.log(ctx, log.LevelCritical, msg, args)
}

func (l *Logger) Log(ctx context.Context, level log.Level, msg string, args ...any) {
	l.log(ctx, level, msg, args)
}

// Slog exposes the logger through the standard structured logging API.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(&slogHandler{lg: l})
}

func (l *Logger) log(ctx context.Context, level log.Level, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}
	var pcs [1]uintptr
	// skip Callers, log and the exported wrapper
	runtime.Callers(3+l.skip, pcs[:])

	rec := &Record{
		Time:    l.mgr.opts.clock(),
		Level:   level,
		Name:    l.name,
		Message: msg,
		PC:      pcs[0],
	}
	rec.Attrs = make([]slog.Attr, 0, len(l.attrs)+len(args)/2+1)
	rec.Attrs = append(rec.Attrs, l.attrs...)
	if id := trace.Get(ctx); id != "" {
		rec.Attrs = append(rec.Attrs, slog.String(trace.GetCtxKey(), id))
	}
	rec.Attrs = append(rec.Attrs, argsToAttrs(args)...)
	l.mgr.dispatch(ctx, l, rec)
}

// argsToAttrs pairs args the way slog.Logger does.
func argsToAttrs(args []any) []slog.Attr {
	if len(args) == 0 {
		return nil
	}
	r := slog.NewRecord(time.Time{}, 0, "", 0)
	r.Add(args...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// parentNames returns the dotted prefixes of name, nearest first.
func parentNames(name string) []string {
	var out []string
	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name[:i], '.') {
		out = append(out, name[:i])
	}
	return out
}
