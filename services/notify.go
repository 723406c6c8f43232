package services

import (
	"context"
	"log"

	"courtside/events"
)

var notifier events.Notifier = events.Nop{}

// SetNotifier wires the outbound event publisher. Called once at startup.
func SetNotifier(n events.Notifier) {
	if n != nil {
		notifier = n
	}
}

// emit publishes after commit; a publish failure never fails the operation.
func emit(key string, v any) {
	if err := notifier.Publish(context.Background(), key, v); err != nil {
		log.Printf("❌ failed to publish %s event: %v", key, err)
	}
}
