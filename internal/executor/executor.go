package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/metrics"
	"github.com/Farengier/usernotes-bot/internal/platform"
	log "github.com/sirupsen/logrus"
)

// ErrExhausted marks a transient failure that outlived the retry budget.
var ErrExhausted = errors.New("retries exhausted")

type Config interface {
	Spacing() time.Duration
	LightSpacing() time.Duration
	RetryDelay() time.Duration
	Attempts() int
}

// Settings is a plain Config.
type Settings struct {
	Space      time.Duration
	LightSpace time.Duration
	Delay      time.Duration
	Tries      int
}

func Defaults() Settings {
	return Settings{
		Space:      5 * time.Second,
		LightSpace: time.Second,
		Delay:      10 * time.Second,
		Tries:      3,
	}
}

func (s Settings) Spacing() time.Duration      { return s.Space }
func (s Settings) LightSpacing() time.Duration { return s.LightSpace }
func (s Settings) RetryDelay() time.Duration   { return s.Delay }
func (s Settings) Attempts() int               { return s.Tries }

// Executor is the single path for mutating platform calls.
type Executor struct {
	gate      *Gate
	rehearsal *Rehearsal
	cfg       Config
	clock     clock.Clock
	log       *log.Entry
}

func New(gate *Gate, rehearsal *Rehearsal, cfg Config, c clock.Clock, logger *log.Entry) *Executor {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Executor{
		gate:      gate,
		rehearsal: rehearsal,
		cfg:       cfg,
		clock:     c,
		log:       logger,
	}
}

type callOptions struct {
	light bool
}

type Option func(*callOptions)

// Light uses the shorter spacing meant for low-risk follow-up calls.
func Light() Option {
	return func(o *callOptions) {
		o.light = true
	}
}

func (e *Executor) Rehearsing() bool {
	return e.rehearsal.Enabled()
}

// Do runs a mutating call through the throttle and retry policy.
func (e *Executor) Do(ctx context.Context, action string, fn func(context.Context) error, opts ...Option) error {
	_, err := Call(ctx, e, action, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// Call is Do for calls that produce a value. In rehearsal mode it returns
// the zero value without running fn.
func Call[T any](ctx context.Context, e *Executor, action string, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	var zero T
	if e.rehearsal.Enabled() {
		e.log.Infof("[Executor] DRY RUN, skipping %s", action)
		metrics.Calls.WithLabelValues(action, "rehearsal").Inc()
		return zero, nil
	}

	o := callOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	spacing := e.cfg.Spacing()
	if o.light {
		spacing = e.cfg.LightSpacing()
	}

	attempts := e.cfg.Attempts()
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, fmt.Errorf("%s: %w", action, ctxErr)
		}

		var res T
		err = e.gate.pass(spacing, func() error {
			var callErr error
			res, callErr = fn(ctx)
			return callErr
		})
		if err == nil {
			metrics.Calls.WithLabelValues(action, "ok").Inc()
			return res, nil
		}

		if !platform.IsTransient(err) {
			metrics.Calls.WithLabelValues(action, "failed").Inc()
			return zero, fmt.Errorf("%s: %w", action, err)
		}
		if attempt < attempts {
			e.log.Warnf("[Executor] %s attempt %d/%d failed, retrying in %s: %s", action, attempt, attempts, e.cfg.RetryDelay(), err)
			metrics.Retries.Inc()
			e.clock.Sleep(e.cfg.RetryDelay())
		}
	}

	metrics.Calls.WithLabelValues(action, "exhausted").Inc()
	e.log.Errorf("[Executor] %s gave up after %d attempts: %s", action, attempts, err)
	return zero, fmt.Errorf("%s failed after %d attempts: %w: %w", action, attempts, ErrExhausted, err)
}
