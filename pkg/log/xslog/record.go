package xslog

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/x-thooh/geotech/pkg/log"
)

// Record is a single log event as seen by handlers and formatters.
type Record struct {
	Time    time.Time
	Level   log.Level
	Name    string
	Message string
	Attrs   []slog.Attr
	PC      uintptr
}

func (r *Record) frame() runtime.Frame {
	if r.PC == 0 {
		return runtime.Frame{}
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	return frame
}

// withAttr returns a shallow copy of r whose attrs are passed through fn.
func (r *Record) withAttrs(fn func(slog.Attr) slog.Attr) *Record {
	cp := *r
	cp.Attrs = make([]slog.Attr, len(r.Attrs))
	for i, a := range r.Attrs {
		cp.Attrs[i] = fn(a)
	}
	return &cp
}
