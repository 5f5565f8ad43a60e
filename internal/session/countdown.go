package session

import "time"

// countdown is the per-question clock. The goroutine it starts only posts
// tick events onto the session event queue; decrementing, timeout emission
// and the advance decision all happen on the queue goroutine, so remaining
// is owned by the dispatcher alone.
type countdown struct {
	questionIndex int
	remaining     int // seconds
	total         int
	stop          chan struct{}
}

// newCountdown starts ticking for a question. Ticks arrive via emit once
// per interval until Stop.
func newCountdown(questionIndex, durationSeconds int, interval time.Duration, emit func(tickEvent)) *countdown {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	c := &countdown{
		questionIndex: questionIndex,
		remaining:     durationSeconds,
		total:         durationSeconds,
		stop:          make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				emit(tickEvent{questionIndex: questionIndex})
			}
		}
	}()

	return c
}

// Stop cancels the pending ticks. Safe to call more than once from the
// queue goroutine.
func (c *countdown) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}
