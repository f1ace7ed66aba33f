package session

import (
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically evicts idle sessions from a store.
type Sweeper struct {
	store    *Store
	maxIdle  time.Duration
	interval time.Duration
	logger   *zap.SugaredLogger

	done chan struct{}
}

// NewSweeper configures a sweeper; Start launches it.
func NewSweeper(store *Store, maxIdle, interval time.Duration, logger *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		store:    store,
		maxIdle:  maxIdle,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called.
func (sw *Sweeper) Start() {
	ticker := time.NewTicker(sw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sw.store.Sweep(sw.maxIdle); n > 0 {
					sw.logger.Infow("evicted idle sessions",
						"count", n,
						"remaining", sw.store.Len())
				}
			case <-sw.done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop. Safe to call once.
func (sw *Sweeper) Stop() {
	close(sw.done)
}
