package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/x-thooh/geotech/pkg/log"
)

// Hooks logs every statement with its arguments inlined and its duration.
type Hooks struct {
	lg atomic.Pointer[log.Logger]
}

type ctxKey string

const (
	beginKey ctxKey = "begin"
	sqlKey   ctxKey = "sql"
)

func (h *Hooks) SetLogger(lg log.Logger) {
	h.lg.Store(&lg)
}

func (h *Hooks) logger() log.Logger {
	if lg := h.lg.Load(); lg != nil {
		return *lg
	}
	return nil
}

// --- 参数格式化 ---
func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return fmt.Sprintf("'%v'", v)
	case []byte:
		return fmt.Sprintf("'%v'", string(v))
	case time.Time:
		return fmt.Sprintf("'%s'", v.Format(time.DateTime))
	case nil:
		return "NULL"
	case []int64:
		return joinInts64(v)
	case []string:
		return joinStrings(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinInts64(arr []int64) string {
	s := make([]string, len(arr))
	for i, num := range arr {
		s[i] = fmt.Sprintf("%d", num)
	}
	return strings.Join(s, ",")
}

func joinStrings(arr []string) string {
	s := make([]string, len(arr))
	for i, str := range arr {
		s[i] = fmt.Sprintf("'%s'", str)
	}
	return strings.Join(s, ",")
}

// --- Placeholder 替换 ---
func replacePlaceholders(query string, args ...interface{}) string {
	var b strings.Builder
	argIndex := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' && argIndex < len(args) {
			b.WriteString(formatArg(args[argIndex]))
			argIndex++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

func oneLineSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func (h *Hooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	finalSQL := oneLineSQL(replacePlaceholders(query, args...))
	ctx = context.WithValue(ctx, sqlKey, finalSQL)
	return context.WithValue(ctx, beginKey, time.Now()), nil
}

func (h *Hooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	begin, ok := ctx.Value(beginKey).(time.Time)
	sql, _ := ctx.Value(sqlKey).(string)

	if lg := h.logger(); ok && lg != nil {
		lg.Debug(
			ctx,
			"Executing SQL",
			slog.String("duration", time.Since(begin).String()),
			slog.String("sql", sql),
		)
	}
	return ctx, nil
}

// OnError keeps the driver error untouched and logs the statement that caused it.
func (h *Hooks) OnError(ctx context.Context, err error, query string, args ...interface{}) error {
	// ErrSkip 只是让 database/sql 改走 prepare
	if errors.Is(err, driver.ErrSkip) {
		return err
	}
	if lg := h.logger(); lg != nil {
		lg.Error(ctx, "SQL failed",
			slog.String("sql", oneLineSQL(replacePlaceholders(query, args...))),
			slog.Any("err", err),
		)
	}
	return err
}
