package xslog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/x-thooh/geotech/pkg/log"
)

// DefaultFormat is used by handlers that reference no formatter.
const DefaultFormat = "%(message)s"

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
)

var recordFields = map[string]fieldKind{
	"asctime":         kindString,
	"created":         kindFloat,
	"filename":        kindString,
	"funcName":        kindString,
	"levelname":       kindString,
	"levelno":         kindInt,
	"lineno":          kindInt,
	"message":         kindString,
	"module":          kindString,
	"msecs":           kindInt,
	"name":            kindString,
	"pathname":        kindString,
	"process":         kindInt,
	"relativeCreated": kindInt,
}

var callerFields = map[string]bool{
	"filename": true,
	"funcName": true,
	"lineno":   true,
	"module":   true,
	"pathname": true,
}

type segment struct {
	literal string
	field   string
	verb    string
	conv    byte
}

// Formatter renders records through a %(field)s template.
type Formatter struct {
	format  string
	datefmt *strftime.Strftime
	segs    []segment
	start   time.Time
}

var defaultFormatter = mustFormatter(DefaultFormat)

func mustFormatter(format string) *Formatter {
	f, err := NewFormatter(format, "", time.Now())
	if err != nil {
		panic(err)
	}
	return f
}

// NewFormatter compiles format. datefmt uses strftime directives and
// controls %(asctime)s; start anchors %(relativeCreated)d.
func NewFormatter(format, datefmt string, start time.Time) (*Formatter, error) {
	if format == "" {
		format = DefaultFormat
	}
	segs, err := parseFormat(format)
	if err != nil {
		return nil, err
	}
	f := &Formatter{
		format: format,
		segs:   segs,
		start:  start,
	}
	if datefmt != "" {
		if f.datefmt, err = compileDatefmt(datefmt); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseFormat(format string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return nil, fmt.Errorf("%w: trailing %% in %q", log.ErrInvalidFormat, format)
		}
		if format[i+1] == '%' {
			lit.WriteByte('%')
			i++
			continue
		}
		if format[i+1] != '(' {
			return nil, fmt.Errorf("%w: expected %%(name) at offset %d in %q", log.ErrInvalidFormat, i, format)
		}
		end := strings.IndexByte(format[i+2:], ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated %%( in %q", log.ErrInvalidFormat, format)
		}
		key := format[i+2 : i+2+end]
		kind, ok := recordFields[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", log.ErrInvalidFormat, key)
		}

		j := i + 2 + end + 1
		flagsAt := j
		for j < len(format) && strings.IndexByte("#0+- ", format[j]) >= 0 {
			j++
		}
		for j < len(format) && isDigit(format[j]) {
			j++
		}
		if j < len(format) && format[j] == '.' {
			j++
			for j < len(format) && isDigit(format[j]) {
				j++
			}
		}
		if j >= len(format) {
			return nil, fmt.Errorf("%w: missing conversion for %q", log.ErrInvalidFormat, key)
		}
		conv := format[j]
		goConv := conv
		switch conv {
		case 's', 'r':
			goConv = 's'
		case 'd', 'i':
			goConv = 'd'
		case 'x', 'X', 'o':
		case 'f', 'F':
			goConv = 'f'
		case 'e', 'E', 'g', 'G':
		default:
			return nil, fmt.Errorf("%w: unsupported conversion %q for %q", log.ErrInvalidFormat, conv, key)
		}
		if goConv != 's' && kind == kindString {
			return nil, fmt.Errorf("%w: field %q is not numeric", log.ErrInvalidFormat, key)
		}

		flush()
		segs = append(segs, segment{
			field: key,
			verb:  "%" + format[flagsAt:j] + string(goConv),
			conv:  conv,
		})
		i = j
	}
	flush()
	return segs, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (f *Formatter) Format(rec *Record) string {
	var (
		b      strings.Builder
		frame  runtime.Frame
		framed bool
	)
	for _, s := range f.segs {
		if s.field == "" {
			b.WriteString(s.literal)
			continue
		}
		if callerFields[s.field] && !framed {
			frame = rec.frame()
			framed = true
		}
		s.render(&b, f.value(s.field, rec, frame))
	}
	return b.String()
}

func (s segment) render(b *strings.Builder, v interface{}) {
	switch s.conv {
	case 's':
		fmt.Fprintf(b, s.verb, fmt.Sprint(v))
	case 'r':
		if str, ok := v.(string); ok {
			fmt.Fprintf(b, s.verb, strconv.Quote(str))
			return
		}
		fmt.Fprintf(b, s.verb, fmt.Sprint(v))
	case 'f', 'F', 'e', 'E', 'g', 'G':
		fmt.Fprintf(b, s.verb, toFloat(v))
	default:
		fmt.Fprintf(b, s.verb, toInt(v))
	}
}

func toInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func (f *Formatter) value(field string, rec *Record, frame runtime.Frame) interface{} {
	switch field {
	case "asctime":
		return f.formatTime(rec.Time)
	case "created":
		return float64(rec.Time.UnixNano()) / float64(time.Second)
	case "filename":
		if frame.File == "" {
			return ""
		}
		return filepath.Base(frame.File)
	case "funcName":
		return funcName(frame.Function)
	case "levelname":
		return rec.Level.String()
	case "levelno":
		return int(rec.Level)
	case "lineno":
		return frame.Line
	case "message":
		return renderMessage(rec)
	case "module":
		if frame.File == "" {
			return ""
		}
		return strings.TrimSuffix(filepath.Base(frame.File), filepath.Ext(frame.File))
	case "msecs":
		return rec.Time.Nanosecond() / int(time.Millisecond)
	case "name":
		return rec.Name
	case "pathname":
		return frame.File
	case "process":
		return os.Getpid()
	case "relativeCreated":
		return int64(rec.Time.Sub(f.start) / time.Millisecond)
	}
	return ""
}

func (f *Formatter) formatTime(t time.Time) string {
	if f.datefmt != nil {
		return f.datefmt.FormatString(t)
	}
	return fmt.Sprintf("%s,%03d", t.Format(time.DateTime), t.Nanosecond()/int(time.Millisecond))
}

// funcName trims the import path, the package and a pointer receiver from
// a runtime function name.
func funcName(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.IndexByte(fn, '.'); i >= 0 {
		fn = fn[i+1:]
	}
	if strings.HasPrefix(fn, "(") {
		if i := strings.Index(fn, ")."); i >= 0 {
			fn = fn[i+2:]
		}
	}
	return fn
}

func renderMessage(rec *Record) string {
	if len(rec.Attrs) == 0 {
		return rec.Message
	}
	var b strings.Builder
	b.WriteString(rec.Message)
	for _, a := range rec.Attrs {
		writeAttr(&b, "", a)
	}
	return b.String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%v", prefix, a.Key, a.Value)
}
