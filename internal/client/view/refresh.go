package view

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

const (
	DetailInterval = 5 * time.Second
	ListInterval   = 30 * time.Second

	defaultJitter = 0.1
)

// Refresher re-fetches on a jittered interval while visible. Fetches never
// overlap; errors are logged and dropped.
type Refresher struct {
	interval time.Duration
	jitter   float64
	fetch    func(ctx context.Context) error
	logger   logging.Logger

	visible atomic.Bool
	trigger chan struct{}
	rand    func() float64
}

func NewRefresher(interval time.Duration, fetch func(ctx context.Context) error, logger logging.Logger) *Refresher {
	r := &Refresher{
		interval: interval,
		jitter:   defaultJitter,
		fetch:    fetch,
		logger:   logger.With("module", "refresher"),
		trigger:  make(chan struct{}, 1),
		rand:     rand.Float64,
	}
	r.visible.Store(true)
	return r
}

// SetVisible pauses or resumes refresh. Becoming visible refreshes at once.
func (r *Refresher) SetVisible(visible bool) {
	was := r.visible.Swap(visible)
	if visible && !was {
		r.Trigger()
	}
}

// Trigger asks for a refresh as soon as possible. Requests coalesce.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Refresher) next() time.Duration {
	delta := (r.rand()*2 - 1) * r.jitter
	d := time.Duration(float64(r.interval) * (1 + delta))
	if d <= 0 {
		d = r.interval
	}
	return d
}

// Run blocks until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	for {
		timer := time.NewTimer(r.next())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-r.trigger:
			timer.Stop()
		case <-timer.C:
		}

		if !r.visible.Load() {
			continue
		}
		if err := r.fetch(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn(ctx, "refresh failed", "error", err)
		}
	}
}
