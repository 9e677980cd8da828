package logger

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/x-thooh/geotech/internal/config"
	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
)

// InitLogger 日志
func InitLogger(cfg *config.Logging, reg prometheus.Registerer) (*xslog.Manager, func(), error) {
	doc, err := log.Load(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	opts := []xslog.Option{xslog.WithRegisterer(reg)}
	if cfg.BaseDir != "" {
		opts = append(opts, xslog.WithBaseDir(cfg.BaseDir))
	}
	m, cleanup, err := xslog.New(doc, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("configure logging from %s: %w", cfg.File, err)
	}
	return m, cleanup, nil
}

// MainLogger is the logger the application itself reports through.
func MainLogger(m *xslog.Manager) log.Logger {
	return m.GetLogger("main")
}

// DefaultLogger adapts a logger to the printf style used by pkg/app.
type DefaultLogger struct {
	Lg log.Logger
}

// caller 让记录指向调用 Infof 等方法的位置，而不是本适配器
func (l *DefaultLogger) caller() log.Logger {
	if x, ok := l.Lg.(*xslog.Logger); ok {
		return x.AddCallerSkip(1)
	}
	return l.Lg
}

func (l *DefaultLogger) Debugf(format string, a ...interface{}) {
	l.caller().Debug(context.Background(), fmt.Sprintf(format, a...))
}

func (l *DefaultLogger) Infof(format string, a ...interface{}) {
	l.caller().Info(context.Background(), fmt.Sprintf(format, a...))
}

func (l *DefaultLogger) Warnf(format string, a ...interface{}) {
	l.caller().Warn(context.Background(), fmt.Sprintf(format, a...))
}

func (l *DefaultLogger) Errorf(format string, a ...interface{}) {
	l.caller().Error(context.Background(), fmt.Sprintf(format, a...))
}

// Watcher reloads the logging document while the app runs.
type Watcher struct {
	cfg *config.Logging
	m   *xslog.Manager
}

func NewWatcher(cfg *config.Logging, m *xslog.Manager) *Watcher {
	return &Watcher{cfg: cfg, m: m}
}

// Start blocks until ctx is done; it returns at once when watching is off.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.Watch {
		return nil
	}
	return xslog.Watch(ctx, w.cfg.File, w.m, w.m.GetLogger("geotech.config"))
}

func (w *Watcher) Stop(_ context.Context) error {
	return nil
}
