// Package poll provides a bounded condition-polling loop with pooled timers.
package poll

import (
	"errors"
	"sync"
	"time"
)

// ErrDeadlineExceeded indicates that the condition did not hold before the
// overall polling deadline elapsed.
var ErrDeadlineExceeded = errors.New("poll: deadline exceeded")

// Condition reports whether polling should stop.
type Condition func() (bool, error)

// Until evaluates cond every interval until it reports true, returns an
// error, or maxWait elapses. A maxWait of zero polls without an overall
// bound. cond is evaluated once before the first sleep, so a condition that
// already holds never sleeps.
func Until(cond Condition, interval, maxWait time.Duration) error {
	var deadline time.Time
	if maxWait > 0 {
		deadline = time.Now().Add(maxWait)
	}

	for {
		done, err := cond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if maxWait > 0 && !time.Now().Before(deadline) {
			return ErrDeadlineExceeded
		}
		sleep(interval)
	}
}

var timerPool sync.Pool

func sleep(d time.Duration) {
	t := getTimer(d)
	<-t.C
	timerPool.Put(t)
}

// getTimer returns a timer for the given duration d from the pool.
func getTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer) // only *time.Timer is ever put into the pool
		if t.Reset(d) {
			// Timer was active, drain the channel to prevent potential leaks.
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	return time.NewTimer(d)
}
