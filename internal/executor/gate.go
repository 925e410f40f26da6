package executor

import (
	"sync"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/metrics"
)

// Gate serializes calls made on behalf of one platform account and keeps
// them apart by at least the requested spacing. Share one Gate between
// every executor that spends the same rate-limit budget.
type Gate struct {
	mtx   sync.Mutex
	clock clock.Clock
	last  time.Time
}

func NewGate(c clock.Clock) *Gate {
	return &Gate{clock: c}
}

// pass waits out the remaining spacing since the last successful call,
// runs fn and stamps the completion time on success. The gate is held
// while fn runs.
func (g *Gate) pass(spacing time.Duration, fn func() error) error {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	var waited time.Duration
	if !g.last.IsZero() {
		waited = spacing - g.clock.Now().Sub(g.last)
		if waited > 0 {
			g.clock.Sleep(waited)
		} else {
			waited = 0
		}
	}
	metrics.ThrottleWait.Observe(waited.Seconds())

	err := fn()
	if err == nil {
		g.last = g.clock.Now()
	}
	return err
}

// Last returns the completion time of the last successful call.
func (g *Gate) Last() time.Time {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.last
}
