package transport

import "context"

// Server is a long-running component the app starts and stops.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
