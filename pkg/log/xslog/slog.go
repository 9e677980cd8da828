package xslog

import (
	"context"
	"log/slog"

	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/trace"
)

// slogHandler routes slog records into a Logger of the hierarchy.
type slogHandler struct {
	lg     *Logger
	attrs  []slog.Attr
	prefix string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.lg.Enabled(log.FromSlog(level))
}

func (h *slogHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := &Record{
		Time:    r.Time,
		Level:   log.FromSlog(r.Level),
		Name:    h.lg.name,
		Message: r.Message,
		PC:      r.PC,
	}
	if rec.Time.IsZero() {
		rec.Time = h.lg.mgr.opts.clock()
	}
	rec.Attrs = make([]slog.Attr, 0, len(h.lg.attrs)+len(h.attrs)+r.NumAttrs()+1)
	rec.Attrs = append(rec.Attrs, h.lg.attrs...)
	rec.Attrs = append(rec.Attrs, h.attrs...)
	if id := trace.Get(ctx); id != "" {
		rec.Attrs = append(rec.Attrs, slog.String(trace.GetCtxKey(), id))
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs = append(rec.Attrs, h.qualify(a))
		return true
	})
	h.lg.mgr.dispatch(ctx, h.lg, rec)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	cp := *h
	cp.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		cp.attrs = append(cp.attrs, h.qualify(a))
	}
	return &cp
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func (h *slogHandler) qualify(a slog.Attr) slog.Attr {
	if h.prefix == "" || a.Key == "" {
		return a
	}
	a.Key = h.prefix + a.Key
	return a
}
