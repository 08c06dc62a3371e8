package syncx

import (
	"time"

	"golang.org/x/time/rate"
)

// IntervalLimiter enforces a process-wide minimum interval between outbound
// calls. It wraps a token bucket of burst 1 refilling once per interval, so
// every caller after the first waits a full interval behind the previous
// one. The limiter itself serializes concurrent reservations; the injectable
// clock supplies the time base and the sleep.
type IntervalLimiter struct {
	limiter *rate.Limiter
	clock   Clock
}

func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		clock:   systemClock{},
	}
}

// Wait blocks until the caller's reserved slot arrives.
func (l *IntervalLimiter) Wait() {
	now := l.clock.Now()
	r := l.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		l.clock.Sleep(d)
	}
}
