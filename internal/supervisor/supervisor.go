// Package supervisor keeps one worker goroutine per community alive,
// restarting any worker whose loop returns or panics.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const DefaultRestartDelay = 5 * time.Second

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Reporter interface {
	ReportError(msg string)
}

type exit struct {
	worker Worker
	err    error
}

// Status is a snapshot of one supervised worker.
type Status struct {
	Name     string    `json:"name"`
	Running  bool      `json:"running"`
	Restarts int       `json:"restarts"`
	Started  time.Time `json:"started"`
	LastErr  string    `json:"last_error,omitempty"`
}

type Supervisor struct {
	workers  []Worker
	reporter Reporter
	clock    clock.Clock
	delay    time.Duration

	exits chan exit
	wg    sync.WaitGroup

	mtx    sync.Mutex
	status map[string]*Status
}

func New(workers []Worker, reporter Reporter, c clock.Clock, restartDelay time.Duration) *Supervisor {
	status := make(map[string]*Status, len(workers))
	for _, w := range workers {
		status[w.Name()] = &Status{Name: w.Name()}
	}
	return &Supervisor{
		workers:  workers,
		reporter: reporter,
		clock:    c,
		delay:    restartDelay,
		exits:    make(chan exit, len(workers)),
		status:   status,
	}
}

// Run blocks until ctx is done and every worker has returned.
func (s *Supervisor) Run(ctx context.Context) {
	for _, w := range s.workers {
		s.start(ctx, w)
		log.Infof("[Supervisor] started worker %s", w.Name())
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("[Supervisor] stopping, waiting for workers")
			s.wg.Wait()
			return
		case e := <-s.exits:
			if ctx.Err() != nil {
				continue
			}
			s.restart(ctx, e)
		}
	}
}

func (s *Supervisor) restart(ctx context.Context, e exit) {
	name := e.worker.Name()
	msg := fmt.Sprintf("Worker %s exited: %s; restarting", name, e.err)
	log.Error("[Supervisor] " + msg)
	if s.reporter != nil {
		s.reporter.ReportError(msg)
	}
	metrics.Restarts.WithLabelValues(name).Inc()

	s.mtx.Lock()
	st := s.status[name]
	st.Restarts++
	s.mtx.Unlock()

	s.clock.Sleep(s.delay)
	if ctx.Err() != nil {
		return
	}
	s.start(ctx, e.worker)
}

func (s *Supervisor) start(ctx context.Context, w Worker) {
	s.mtx.Lock()
	st := s.status[w.Name()]
	st.Running = true
	st.Started = s.clock.Now()
	s.mtx.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.runSafe(ctx, w)

		s.mtx.Lock()
		st.Running = false
		if err != nil {
			st.LastErr = err.Error()
		}
		s.mtx.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("feed loop ended")
		}
		s.exits <- exit{worker: w, err: err}
	}()
}

func (s *Supervisor) runSafe(ctx context.Context, w Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return w.Run(ctx)
}

// Status lists the workers sorted by name.
func (s *Supervisor) Status() []Status {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	out := make([]Status, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
