// Package syncx pulls credentials from the intelx API into the graph:
// rate-limited, retried, two-phase search with per-item failure isolation.
package syncx

import "time"

// Clock abstracts time for the limiter and the retry backoff so tests run
// without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
