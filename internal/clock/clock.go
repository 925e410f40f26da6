package clock

import (
	"sync"
	"time"
)

// Clock abstracts the time calls made by throttles, caches and
// supervisors so tests can run them without waiting.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// FakeClock stands still until Advance or Sleep is called. Sleep returns
// immediately after moving the clock forward, which keeps throttle and
// backoff tests deterministic.
type FakeClock struct {
	mtx    sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func Fake(initial time.Time) *FakeClock {
	return &FakeClock{now: initial}
}

func (f *FakeClock) Now() time.Time {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.now
}

func (f *FakeClock) Sleep(d time.Duration) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.sleeps = append(f.sleeps, d)
	if d > 0 {
		f.now = f.now.Add(d)
	}
}

func (f *FakeClock) Advance(d time.Duration) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.now = f.now.Add(d)
}

// Sleeps returns every duration passed to Sleep, in call order.
func (f *FakeClock) Sleeps() []time.Duration {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
