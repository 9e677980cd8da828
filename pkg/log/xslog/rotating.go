package xslog

import (
	"context"
	"math"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
)

const (
	megabyte = 1 << 20
	// large enough that lumberjack never rotates on size by itself
	unboundedMB = 1 << 30
)

// RotatingFileHandler rotates its file once it would exceed maxBytes.
type RotatingFileHandler struct {
	baseHandler
	mu  sync.Mutex
	lj  *lumberjack.Logger
	enc *lineEncoder
}

func newRotatingFileHandler(env *BuildEnv) (Handler, error) {
	lj, enc, err := newLumberjack(env)
	if err != nil {
		return nil, err
	}
	// lumberjack counts in whole megabytes
	if mb := env.Config.MaxBytes; mb > 0 {
		lj.MaxSize = int(math.Ceil(float64(mb) / megabyte))
	}
	return &RotatingFileHandler{baseHandler: env.base(), lj: lj, enc: enc}, nil
}

func newLumberjack(env *BuildEnv) (*lumberjack.Logger, *lineEncoder, error) {
	path := env.Path()
	if err := prepareFile(path); err != nil {
		return nil, nil, env.Errorf("filename", err)
	}
	e, err := resolveEncoding(env.Config.Encoding)
	if err != nil {
		return nil, nil, env.Errorf("encoding", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    unboundedMB,
		MaxBackups: env.Config.BackupCount,
		LocalTime:  !env.Config.UTC,
	}, newLineEncoder(e), nil
}

func (h *RotatingFileHandler) Handle(_ context.Context, rec *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, err := h.enc.encode(h.line(rec))
	if err != nil {
		return err
	}
	_, err = h.lj.Write(b)
	return err
}

func (h *RotatingFileHandler) Close() error {
	return h.lj.Close()
}

// TimedRotatingFileHandler rotates its file on a calendar schedule and keeps
// at most BackupCount rotated files.
type TimedRotatingFileHandler struct {
	baseHandler
	mu         sync.Mutex
	lj         *lumberjack.Logger
	enc        *lineEncoder
	rule       *Rollover
	next       time.Time
	now        func() time.Time
	onRollover func()
}

func newTimedRotatingFileHandler(env *BuildEnv) (Handler, error) {
	rule, err := NewRollover(env.Config.When, env.Config.Interval, env.Config.UTC)
	if err != nil {
		return nil, env.Errorf("when", err)
	}
	lj, enc, err := newLumberjack(env)
	if err != nil {
		return nil, err
	}
	base := env.Now()
	if info, err := os.Stat(lj.Filename); err == nil {
		base = info.ModTime()
	}
	onRollover := env.onRollover
	if onRollover == nil {
		onRollover = func() {}
	}
	return &TimedRotatingFileHandler{
		baseHandler: env.base(),
		lj:          lj,
		enc:         enc,
		rule:        rule,
		next:        rule.Next(base),
		now:         env.now,
		onRollover:  onRollover,
	}, nil
}

func (h *TimedRotatingFileHandler) Handle(_ context.Context, rec *Record) error {
	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()
	if !now.Before(h.next) {
		if err := h.lj.Rotate(); err != nil {
			return err
		}
		h.next = h.rule.Next(now)
		h.onRollover()
	}
	b, err := h.enc.encode(h.line(rec))
	if err != nil {
		return err
	}
	_, err = h.lj.Write(b)
	return err
}

func (h *TimedRotatingFileHandler) Close() error {
	return h.lj.Close()
}

func (h *TimedRotatingFileHandler) Filename() string {
	return h.lj.Filename
}

func (h *TimedRotatingFileHandler) BackupCount() int {
	return h.lj.MaxBackups
}

func (h *TimedRotatingFileHandler) When() string {
	return h.rule.When
}

// NextRollover is the instant at or after which the next record rotates the file.
func (h *TimedRotatingFileHandler) NextRollover() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}
