package matching

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Holder publishes the current Matcher. Swapping in a rebuilt Matcher does not affect
// calls already running against the previous one.
type Holder struct {
	current atomic.Pointer[Matcher]
}

// NewHolder returns a Holder serving m.
func NewHolder(m *Matcher) *Holder {
	h := &Holder{}
	h.current.Store(m)
	return h
}

// Load returns the current Matcher.
func (h *Holder) Load() *Matcher {
	return h.current.Load()
}

// Swap installs m and returns the previous Matcher.
func (h *Holder) Swap(m *Matcher) *Matcher {
	return h.current.Swap(m)
}

// Resolve resolves raw against the current snapshot.
func (h *Holder) Resolve(raw string) *Match {
	return h.Load().Resolve(raw)
}

// BuildFunc rebuilds a Matcher from its sources.
type BuildFunc func(ctx context.Context) (*Matcher, error)

// Refresh rebuilds the Matcher every interval until ctx is done. A failed rebuild is
// logged and the previous snapshot stays in place.
func (h *Holder) Refresh(ctx context.Context, interval time.Duration, build BuildFunc) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			m, err := build(ctx)
			if err != nil {
				slog.Error("Catalog reload failed, keeping previous snapshot", "err", err)
				continue
			}
			h.Swap(m)
			slog.Info("Catalog reloaded", "books", len(m.Index().Books()), "series", len(m.Index().Series()), "duration", time.Since(start))
		}
	}
}
