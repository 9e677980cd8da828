package xslog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/pkg/log"
)

func rootOnly(handler string) string {
	return fmt.Sprintf(`
version: 1
handlers:
%s
root:
  level: INFO
  handlers: [h]
`, handler)
}

func TestBuiltinClasses(t *testing.T) {
	assert.Subset(t, Classes(), []string{
		log.ClassStream,
		log.ClassFile,
		log.ClassNull,
		log.ClassRotatingFile,
		log.ClassTimedRotatingFile,
	})
	assert.IsIncreasing(t, Classes())
}

func TestFileHandlerTruncateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	fx := configure(t, parse(t, rootOnly(fmt.Sprintf(`
  h:
    class: logging.FileHandler
    filename: %s
    mode: w`, path))))
	fx.m.GetLogger("main").Info(context.Background(), "fresh")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(b))
}

func TestFileHandlerDelay(t *testing.T) {
	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.FileHandler
    filename: nested/lazy.log
    delay: true`)))
	path := filepath.Join(fx.dir, "nested", "lazy.log")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	fx.m.GetLogger("main").Info(context.Background(), "first")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(b))
}

func TestFileHandlerEncoding(t *testing.T) {
	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.FileHandler
    filename: latin.log
    encoding: latin1`)))
	fx.m.GetLogger("main").Info(context.Background(), "Café")

	b, err := os.ReadFile(filepath.Join(fx.dir, "latin.log"))
	require.NoError(t, err)
	assert.Equal(t, []byte("Caf\xe9\n"), b)
}

func TestConfigureErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocker"), nil, 0o644))

	cases := []struct {
		name    string
		handler string
		want    error
		field   string
	}{
		{"unwritable", `
  h:
    class: logging.FileHandler
    filename: blocker/app.log`, log.ErrUnwritablePath, "filename"},
		{"encoding", `
  h:
    class: logging.handlers.TimedRotatingFileHandler
    filename: app.log
    encoding: klingon`, log.ErrUnknownEncoding, "encoding"},
		{"stream", `
  h:
    class: logging.StreamHandler
    stream: ext://sys.stdlog`, log.ErrUnknownStream, "stream"},
		{"class", `
  h:
    class: logging.handlers.SMTPHandler`, log.ErrUnknownClass, "class"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Configure(parse(t, rootOnly(c.handler)), WithBaseDir(dir), WithErrorOutput(&bytes.Buffer{}))
			require.ErrorIs(t, err, c.want)
			var ce *log.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "h", ce.Name)
			assert.Equal(t, c.field, ce.Field)
		})
	}
}

func TestConfigureRejectsBadFormatter(t *testing.T) {
	_, err := Configure(parse(t, `
version: 1
formatters:
  broken: "%(asctime)s %(colour)s"
`))
	require.ErrorIs(t, err, log.ErrInvalidFormat)
	var ce *log.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "formatters", ce.Section)
	assert.Equal(t, "broken", ce.Name)
}

func TestNullHandlerSuppressesLastResort(t *testing.T) {
	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.NullHandler`)))
	fx.m.GetLogger("main").Error(context.Background(), "swallowed")
	assert.Empty(t, fx.errOut.String())
}

func TestRotatingFileHandlerSize(t *testing.T) {
	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.handlers.RotatingFileHandler
    filename: size.log
    maxBytes: 1500000
    backupCount: 3`)))
	h, ok := fx.m.Handler("h")
	require.True(t, ok)
	rh := h.(*RotatingFileHandler)
	assert.Equal(t, 2, rh.lj.MaxSize)
	assert.Equal(t, 3, rh.lj.MaxBackups)

	fx.m.GetLogger("main").Info(context.Background(), "sized")
	b, err := os.ReadFile(filepath.Join(fx.dir, "size.log"))
	require.NoError(t, err)
	assert.Equal(t, "sized\n", string(b))
}

func TestTimedRotationKeepsBackupCount(t *testing.T) {
	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.handlers.TimedRotatingFileHandler
    filename: logs/run.log
    when: W0
    backupCount: 2`)))
	h, ok := fx.m.Handler("h")
	require.True(t, ok)
	th := h.(*TimedRotatingFileHandler)

	ctx := context.Background()
	lg := fx.m.GetLogger("geotech.settlement")
	lg.Info(ctx, "week 0")
	for week := 1; week <= 4; week++ {
		fx.clock.Set(th.NextRollover())
		// backup names carry the wall clock in milliseconds
		time.Sleep(2 * time.Millisecond)
		lg.Info(ctx, fmt.Sprintf("week %d", week))
	}

	b, err := os.ReadFile(th.Filename())
	require.NoError(t, err)
	assert.Equal(t, "week 4\n", string(b))
	assert.Equal(t, time.Date(2026, time.November, 17, 0, 0, 0, 0, time.Local), th.NextRollover())
	assert.Equal(t, 4.0, testutil.ToFloat64(fx.m.metrics.rollovers.WithLabelValues("h")))

	require.Eventually(t, func() bool {
		backups, _ := filepath.Glob(filepath.Join(fx.dir, "logs", "run-*.log"))
		return len(backups) == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestTimedRotationBaseIsFileMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))
	// last written on a Sunday, two weeks before the clock
	mtime := time.Date(2026, time.October, 4, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	fx := configure(t, parse(t, rootOnly(`
  h:
    class: logging.handlers.TimedRotatingFileHandler
    filename: `+path+`
    when: W0`)))
	h, _ := fx.m.Handler("h")
	th := h.(*TimedRotatingFileHandler)
	assert.Equal(t, time.Date(2026, time.October, 6, 0, 0, 0, 0, time.Local), th.NextRollover())

	// the first record after the missed boundary rotates immediately
	fx.m.GetLogger("main").Info(context.Background(), "new run")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new run\n", string(b))
	assert.Equal(t, time.Date(2026, time.October, 20, 0, 0, 0, 0, time.Local), th.NextRollover())
}

func TestColorSQL(t *testing.T) {
	out := colorSQL("select id from runs where run_no = ?")
	assert.Contains(t, out, yellow+"select"+reset)
	assert.Contains(t, out, yellow+"where"+reset)
	assert.Contains(t, out, cyan+"="+reset)
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
