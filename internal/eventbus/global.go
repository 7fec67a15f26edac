package eventbus

import "context"

var globalBus Bus

// Init installs the process-wide bus used by Publish. Call once at
// startup; a server that never calls Init gets Publish as a silent
// no-op, same degrade-gracefully behavior as a configured but
// zero-subscriber memoryBus.
func Init(bus Bus) { globalBus = bus }

// Publish sends ev on the global bus, if one has been installed.
func Publish(ctx context.Context, ev *Envelope) error {
	if globalBus == nil {
		return nil
	}
	return globalBus.Publish(ctx, ev)
}
