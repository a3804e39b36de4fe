package history

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultQuietPeriod batches rapid repository change events into one cache
// flush. A rebase touches many refs in quick succession; flushing once after
// the burst settles avoids thrashing the cache mid-operation.
const DefaultQuietPeriod = 300 * time.Millisecond

// Invalidator debounces external change notifications into a single flush
// callback after a quiet period. Notify never blocks.
type Invalidator struct {
	flush func()
	quiet time.Duration
	log   *zap.Logger

	events chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewInvalidator starts the debounce loop. flush runs on the loop goroutine
// once per settled burst of notifications. quiet values <= 0 fall back to
// DefaultQuietPeriod; a nil logger is replaced with a no-op one.
func NewInvalidator(flush func(), quiet time.Duration, logger *zap.Logger) *Invalidator {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	inv := &Invalidator{
		flush:  flush,
		quiet:  quiet,
		log:    logger,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	inv.wg.Add(1)
	go inv.loop()
	return inv
}

// Notify records that the repository changed on disk. Bursts coalesce.
func (inv *Invalidator) Notify() {
	select {
	case inv.events <- struct{}{}:
	default:
	}
}

// Close stops the loop. A pending, not-yet-fired flush is dropped.
func (inv *Invalidator) Close() {
	close(inv.done)
	inv.wg.Wait()
}

func (inv *Invalidator) loop() {
	defer inv.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-inv.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-inv.events:
			if timer == nil {
				timer = time.NewTimer(inv.quiet)
				fire = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(inv.quiet)
		case <-fire:
			inv.log.Debug("repository changed, flushing history cache")
			inv.flush()
			timer = nil
			fire = nil
		}
	}
}
