package xslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/x-thooh/geotech/pkg/log"
)

// StreamHandler 写到 stdout/stderr 等流，终端下 SQL 高亮
type StreamHandler struct {
	baseHandler
	mu      sync.Mutex
	out     io.Writer
	isColor bool
}

func newStreamHandler(env *BuildEnv) (Handler, error) {
	stream := env.Config.Stream
	if stream == "" {
		stream = StreamStderr
	}
	w, ok := env.streams[stream]
	if !ok {
		return nil, env.Errorf("stream", fmt.Errorf("%w: %q", log.ErrUnknownStream, stream))
	}
	return &StreamHandler{
		baseHandler: env.base(),
		out:         w,
		isColor:     isTerminal(w),
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *StreamHandler) Handle(_ context.Context, rec *Record) error {
	if h.isColor {
		rec = rec.withAttrs(colorAttr)
	}
	line := h.line(rec)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

// Close leaves the stream open; it is owned by the process.
func (h *StreamHandler) Close() error {
	return nil
}

func colorAttr(a slog.Attr) slog.Attr {
	if a.Key == "sql" {
		return slog.String(a.Key, colorSQL(a.Value.String()))
	}
	return a
}

// --- SQL 高亮 ---
const (
	yellow = "\033[33m"
	cyan   = "\033[36m"
	reset  = "\033[0m"
)

var (
	// SQL 关键字，匹配完整单词，忽略大小写
	sqlKeywords = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
		"SELECT", "INSERT", "UPDATE", "DELETE",
		"FROM", "WHERE", "VALUES", "SET", "INTO",
		"JOIN", "LEFT JOIN", "RIGHT JOIN", "INNER JOIN", "OUTER JOIN",
		"ON", "AND", "OR", "IN", "AS",
		"LIMIT", "GROUP BY", "ORDER BY", "HAVING", "DISTINCT",
		"IGNORE", "NOT", "NULL", "IS", "BETWEEN", "EXISTS",
	}, `|`) + `)\b`)
	sqlSymbols = regexp.MustCompile(`>=|<=|<>|[=<>,]`)
)

func colorSQL(sql string) string {
	// 保留原大小写
	sql = sqlKeywords.ReplaceAllStringFunc(sql, func(s string) string {
		return yellow + s + reset
	})
	// 常见符号青色
	return sqlSymbols.ReplaceAllStringFunc(sql, func(s string) string {
		return cyan + s + reset
	})
}
