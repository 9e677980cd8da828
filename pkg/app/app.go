package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// App starts its servers together and stops them all once one fails, a
// signal arrives or Stop is called.
type App struct {
	opts     options
	ctx      context.Context
	cancel   context.CancelFunc
	instance *Instance
}

func New(opts ...Option) *App {
	o := options{
		ctx:         context.Background(),
		sigs:        []os.Signal{syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT},
		logger:      nopLogger{},
		stopTimeout: 10 * time.Second,
	}
	if id, err := os.Hostname(); err == nil {
		o.id = id
	}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(o.ctx)
	return &App{
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
		instance: &Instance{
			ID:       o.id,
			Name:     o.name,
			Version:  o.version,
			Metadata: o.metadata,
		},
	}
}

func (a *App) Instance() *Instance {
	return a.instance
}

// Run blocks until every server has stopped.
func (a *App) Run() error {
	eg, ctx := errgroup.WithContext(a.ctx)
	if len(a.opts.sigs) > 0 {
		c := make(chan os.Signal, 1)
		signal.Notify(c, a.opts.sigs...)
		eg.Go(func() error {
			defer signal.Stop(c)
			select {
			case <-ctx.Done():
				return nil
			case sig := <-c:
				a.opts.logger.Infof("received signal %s, stopping", sig)
				return a.Stop()
			}
		})
	}
	wg := sync.WaitGroup{}
	for _, srv := range a.opts.servers {
		eg.Go(func() error {
			// 等待退出信号
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(a.opts.ctx), a.opts.stopTimeout)
			defer cancel()
			return srv.Stop(stopCtx)
		})
		wg.Add(1)
		eg.Go(func() error {
			wg.Done()
			return srv.Start(ctx)
		})
	}
	wg.Wait()
	a.opts.logger.Infof("app %s %s started on %s with %d servers", a.instance.Name, a.instance.Version, a.instance.ID, len(a.opts.servers))

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.opts.logger.Errorf("app stopped: %v", err)
		return err
	}
	a.opts.logger.Infof("app %s stopped", a.instance.Name)
	return nil
}

func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
