package xslog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/x-thooh/geotech/pkg/log"
)

// FileHandler appends formatted records to a single file.
type FileHandler struct {
	baseHandler
	mu   sync.Mutex
	path string
	flag int
	enc  *lineEncoder
	file *os.File
}

func newFileHandler(env *BuildEnv) (Handler, error) {
	path := env.Path()
	if err := prepareFile(path); err != nil {
		return nil, env.Errorf("filename", err)
	}
	e, err := resolveEncoding(env.Config.Encoding)
	if err != nil {
		return nil, env.Errorf("encoding", err)
	}
	h := &FileHandler{
		baseHandler: env.base(),
		path:        path,
		flag:        os.O_CREATE | os.O_WRONLY | os.O_APPEND,
		enc:         newLineEncoder(e),
	}
	if env.Config.Mode == "w" {
		h.flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	if !env.Config.Delay {
		if err = h.open(); err != nil {
			return nil, env.Errorf("filename", fmt.Errorf("%w: %v", log.ErrUnwritablePath, err))
		}
	}
	return h, nil
}

func (h *FileHandler) open() error {
	f, err := os.OpenFile(h.path, h.flag, 0o644)
	if err != nil {
		return err
	}
	h.file = f
	return nil
}

func (h *FileHandler) Handle(_ context.Context, rec *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		if err := h.open(); err != nil {
			return err
		}
	}
	b, err := h.enc.encode(h.line(rec))
	if err != nil {
		return err
	}
	_, err = h.file.Write(b)
	return err
}

func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

// prepareFile creates the parent directory of path and checks that a file
// can be written there, without creating path itself.
func prepareFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", log.ErrUnwritablePath, err)
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", log.ErrUnwritablePath, path)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", log.ErrUnwritablePath, err)
		}
		return f.Close()
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", log.ErrUnwritablePath, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
