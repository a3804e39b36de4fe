package history

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestInvalidatorBatchesBursts(t *testing.T) {
	var flushes int32
	inv := NewInvalidator(func() { atomic.AddInt32(&flushes, 1) }, 20*time.Millisecond, nil)
	defer inv.Close()

	// A burst of events, as a rebase would produce.
	for i := 0; i < 10; i++ {
		inv.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&flushes); got != 1 {
		t.Errorf("expected one batched flush got %d", got)
	}
}

func TestInvalidatorFiresAgainAfterQuietPeriod(t *testing.T) {
	var flushes int32
	inv := NewInvalidator(func() { atomic.AddInt32(&flushes, 1) }, 10*time.Millisecond, nil)
	defer inv.Close()

	inv.Notify()
	time.Sleep(50 * time.Millisecond)
	inv.Notify()
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&flushes); got != 2 {
		t.Errorf("expected two separated flushes got %d", got)
	}
}

func TestInvalidatorCloseDropsPendingFlush(t *testing.T) {
	var flushes int32
	inv := NewInvalidator(func() { atomic.AddInt32(&flushes, 1) }, time.Hour, nil)

	inv.Notify()
	inv.Close()

	if got := atomic.LoadInt32(&flushes); got != 0 {
		t.Errorf("expected no flush after close got %d", got)
	}
}

func TestInvalidatorNotifyNeverBlocks(t *testing.T) {
	inv := NewInvalidator(func() {}, time.Hour, nil)
	defer inv.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			inv.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Notify blocked")
	}
}
