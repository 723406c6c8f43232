package events

import "context"

type Notifier interface {
	Publish(ctx context.Context, key string, v any) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
