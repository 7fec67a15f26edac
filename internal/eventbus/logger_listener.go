package eventbus

import (
	"context"

	"github.com/annel0/mmo-game/internal/logging"
)

// StartLoggingListener subscribes to every event and traces it at
// DEBUG, so world lifecycle activity is visible in the log even with
// no other subscriber configured. Non-blocking.
func StartLoggingListener(bus Bus) error {
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		logging.LogDebug("eventbus: %s payload=%v", ev.EventType, ev.Payload)
	})
	return err
}
