package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type blockingServer struct {
	started atomic.Bool
	stopped atomic.Bool
	release chan struct{}
	once    sync.Once
}

func newBlockingServer() *blockingServer {
	return &blockingServer{release: make(chan struct{})}
}

func (s *blockingServer) Start(ctx context.Context) error {
	s.started.Store(true)
	<-s.release
	return nil
}

func (s *blockingServer) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	s.once.Do(func() { close(s.release) })
	return nil
}

type failingServer struct{ err error }

func (s failingServer) Start(context.Context) error { return s.err }
func (s failingServer) Stop(context.Context) error  { return nil }

type oneShot struct{ ran atomic.Bool }

func (s *oneShot) Start(context.Context) error { s.ran.Store(true); return nil }
func (s *oneShot) Stop(context.Context) error  { return nil }

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) add(level, format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, a...))
}

func (l *recordLogger) Debugf(format string, a ...interface{}) { l.add("DEBUG", format, a...) }
func (l *recordLogger) Infof(format string, a ...interface{})  { l.add("INFO", format, a...) }
func (l *recordLogger) Warnf(format string, a ...interface{})  { l.add("WARN", format, a...) }
func (l *recordLogger) Errorf(format string, a ...interface{}) { l.add("ERROR", format, a...) }

func (l *recordLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestStopStopsEveryServer(t *testing.T) {
	a, b, job := newBlockingServer(), newBlockingServer(), &oneShot{}
	lg := &recordLogger{}
	ap := New(Name("geotech"), Version("v1"), ID("host-1"), Logger(lg), Signal(), Server(a, b, job))

	done := make(chan error, 1)
	go func() { done <- ap.Run() }()
	require.Eventually(t, func() bool { return a.started.Load() && b.started.Load() && job.ran.Load() }, time.Second, 5*time.Millisecond)

	require.NoError(t, ap.Stop())
	require.NoError(t, <-done)
	assert.True(t, a.stopped.Load())
	assert.True(t, b.stopped.Load())
	assert.Contains(t, lg.all(), "INFO app geotech v1 started on host-1 with 3 servers")
	assert.Contains(t, lg.all(), "INFO app geotech stopped")
}

func TestFailingServerStopsTheRest(t *testing.T) {
	a := newBlockingServer()
	boom := errors.New("listen: address in use")
	lg := &recordLogger{}
	ap := New(Logger(lg), Signal(), Server(a, failingServer{err: boom}))

	err := ap.Run()
	assert.ErrorIs(t, err, boom)
	assert.True(t, a.stopped.Load())
	assert.Contains(t, lg.all(), "ERROR app stopped: listen: address in use")
}

func TestSignalStopsTheApp(t *testing.T) {
	a := newBlockingServer()
	lg := &recordLogger{}
	ap := New(Logger(lg), Signal(syscall.SIGUSR1), Server(a))

	done := make(chan error, 1)
	go func() { done <- ap.Run() }()
	require.Eventually(t, a.started.Load, time.Second, 5*time.Millisecond)

	// started 日志之前已经注册了信号
	require.Eventually(t, func() bool {
		for _, line := range lg.all() {
			if strings.HasSuffix(line, "started on "+ap.Instance().ID+" with 1 servers") {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop on signal")
	}
	assert.True(t, a.stopped.Load())
	assert.Contains(t, lg.all(), "INFO received signal user defined signal 1, stopping")
}

func TestParentContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newBlockingServer()
	ap := New(Context(ctx), Signal(), Server(a))

	done := make(chan error, 1)
	go func() { done <- ap.Run() }()
	require.Eventually(t, a.started.Load, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.True(t, a.stopped.Load())
}
