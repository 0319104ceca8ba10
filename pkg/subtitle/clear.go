package subtitle

import (
	"context"
	"time"
)

// clearTask is a pending delayed clear.
type clearTask struct {
	// Generation the clear was scheduled for.
	generation uint64

	// When the subtitle was shown.
	startTime time.Time

	// How long the subtitle stays up.
	duration time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// done is closed when the task goroutine has exited.
	done chan struct{}
}

func newClearTask(generation uint64, duration time.Duration) *clearTask {
	ctx, cancel := context.WithCancel(context.Background())
	return &clearTask{
		generation: generation,
		startTime:  time.Now(),
		duration:   duration,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// expiresAt returns when the clear fires.
func (t *clearTask) expiresAt() time.Time {
	return t.startTime.Add(t.duration)
}

// remaining returns time until the clear fires.
func (t *clearTask) remaining() time.Duration {
	remaining := t.duration - time.Since(t.startTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// stop cancels the task and waits for its goroutine to exit.
func (t *clearTask) stop() {
	t.cancel()
	<-t.done
}

// wait blocks until the clear is due. It returns false if the task was
// cancelled first.
func (t *clearTask) wait() bool {
	timer := time.NewTimer(t.remaining())
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-t.ctx.Done():
		return false
	}
}
