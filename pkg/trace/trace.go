package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

const (
	traceIDAttrKey   = "trace_id"
	traceIDHeaderKey = "X-Trace-ID"
)

// GetCtxKey returns the attribute key trace ids are logged under.
func GetCtxKey() string {
	return traceIDAttrKey
}

func GetHeaderKey() string {
	return traceIDHeaderKey
}

func GenerateTraceID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func Set(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceId)
}

func Get(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tid, _ := ctx.Value(ctxKey{}).(string)
	return tid
}
