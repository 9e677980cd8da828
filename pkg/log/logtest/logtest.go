// Package logtest configures the shipped logging document for tests, with
// the console captured in memory and files under a temporary directory.
package logtest

import (
	"bytes"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
)

// ConfigPath is the logging document shipped with the repository.
func ConfigPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "logging.yaml")
}

type Recorder struct {
	*xslog.Manager
	Dir string

	mu  sync.Mutex
	out bytes.Buffer
}

func New(t testing.TB, opts ...xslog.Option) *Recorder {
	t.Helper()
	cfg, err := log.Load(ConfigPath())
	require.NoError(t, err)

	r := &Recorder{Dir: t.TempDir()}
	opts = append([]xslog.Option{
		xslog.WithStreams(map[string]io.Writer{
			xslog.StreamStdout: r,
			xslog.StreamStderr: r,
		}),
		xslog.WithBaseDir(r.Dir),
		xslog.WithErrorOutput(r),
	}, opts...)
	m, err := xslog.Configure(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Close()
	})
	r.Manager = m
	return r
}

func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Write(p)
}

// Output is everything written to the console so far.
func (r *Recorder) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.String()
}
