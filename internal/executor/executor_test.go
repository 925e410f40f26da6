package executor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestExecutor(dryRun bool) (*Executor, *clock.FakeClock) {
	c := clock.Fake(start)
	return New(NewGate(c), NewRehearsal(dryRun), Defaults(), c, nil), c
}

func TestRehearsalSkipsAction(t *testing.T) {
	e, c := newTestExecutor(true)

	called := false
	err := e.Do(context.Background(), "remove", func(context.Context) error {
		called = true
		return errors.New("must not run")
	})
	require.NoError(t, err)
	assert.False(t, called)

	id, err := Call(context.Background(), e, "reply", func(context.Context) (string, error) {
		called = true
		return "t1_x", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "", id)
	assert.False(t, called)
	assert.Empty(t, c.Sleeps())
}

func TestRehearsalToggle(t *testing.T) {
	e, _ := newTestExecutor(true)
	assert.True(t, e.Rehearsing())
	e.rehearsal.Set(false)

	called := false
	require.NoError(t, e.Do(context.Background(), "remove", func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestSpacingBetweenCalls(t *testing.T) {
	e, c := newTestExecutor(false)

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Do(context.Background(), "remove", func(context.Context) error {
			stamps = append(stamps, c.Now())
			c.Advance(500 * time.Millisecond)
			return nil
		}))
	}

	require.Len(t, stamps, 3)
	assert.Equal(t, start, stamps[0])
	// measured from the end of the previous call
	assert.Equal(t, 5500*time.Millisecond, stamps[1].Sub(stamps[0]))
	assert.Equal(t, 5500*time.Millisecond, stamps[2].Sub(stamps[1]))
}

func TestLightSpacing(t *testing.T) {
	e, c := newTestExecutor(false)

	var stamps []time.Time
	record := func(context.Context) error {
		stamps = append(stamps, c.Now())
		return nil
	}
	require.NoError(t, e.Do(context.Background(), "reply", record))
	require.NoError(t, e.Do(context.Background(), "lock", record, Light()))

	assert.Equal(t, time.Second, stamps[1].Sub(stamps[0]))
}

func TestNoWaitWhenSpacingElapsed(t *testing.T) {
	e, c := newTestExecutor(false)
	noop := func(context.Context) error { return nil }

	require.NoError(t, e.Do(context.Background(), "a", noop))
	c.Advance(time.Minute)
	require.NoError(t, e.Do(context.Background(), "b", noop))

	for _, d := range c.Sleeps() {
		assert.LessOrEqual(t, d, time.Duration(0))
	}
}

func TestConcurrentCallersShareGate(t *testing.T) {
	c := clock.Fake(start)
	gate := NewGate(c)
	rehearsal := NewRehearsal(false)

	var mtx sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		e := New(gate, rehearsal, Defaults(), c, nil)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				_ = e.Do(context.Background(), "remove", func(context.Context) error {
					mtx.Lock()
					stamps = append(stamps, c.Now())
					mtx.Unlock()
					return nil
				})
			}
		}()
	}
	wg.Wait()

	require.Len(t, stamps, 12)
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), 5*time.Second)
	}
}

func TestRetryTransient(t *testing.T) {
	e, c := newTestExecutor(false)

	calls := 0
	err := e.Do(context.Background(), "remove", func(context.Context) error {
		calls++
		if calls < 3 {
			return platform.Transient("remove", errors.New("rate limited"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	var delays int
	for _, d := range c.Sleeps() {
		if d == 10*time.Second {
			delays++
		}
	}
	assert.Equal(t, 2, delays)
}

func TestRetryExhausted(t *testing.T) {
	e, _ := newTestExecutor(false)

	calls := 0
	err := e.Do(context.Background(), "ban", func(context.Context) error {
		calls++
		return platform.Transient("ban", errors.New("503"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, platform.KindTransient, platform.KindOf(err))
}

func TestNonTransientNotRetried(t *testing.T) {
	e, c := newTestExecutor(false)

	calls := 0
	err := e.Do(context.Background(), "ban", func(context.Context) error {
		calls++
		return platform.NewError(platform.KindAuthorization, "ban", errors.New("403"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, platform.KindAuthorization, platform.KindOf(err))
	assert.Empty(t, c.Sleeps())
}

func TestFailedCallDoesNotStampGate(t *testing.T) {
	e, _ := newTestExecutor(false)

	_ = e.Do(context.Background(), "x", func(context.Context) error { return errors.New("boom") })
	assert.True(t, e.gate.Last().IsZero())
}

func TestCancelledContext(t *testing.T) {
	e, _ := newTestExecutor(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := e.Do(ctx, "remove", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
