package registry

import (
	"context"
	"time"
)

// Flusher periodically persists every resident room so edits survive a crash
// even while peers stay connected.
type Flusher struct {
	registry *Registry
	interval time.Duration
}

func NewFlusher(registry *Registry, interval time.Duration) *Flusher {
	return &Flusher{registry: registry, interval: interval}
}

// Run flushes on every tick until the context is cancelled, then takes one
// final pass so a clean shutdown never drops in-memory edits.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			f.registry.FlushAll(flushCtx)
			cancel()
			return
		case <-ticker.C:
			f.registry.FlushAll(ctx)
		}
	}
}
