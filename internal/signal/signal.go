package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

var onShutdown []func() error
var isInitialized = false
var exitCh chan os.Signal
var ctx context.Context
var cancel context.CancelFunc
var mtx = &sync.Mutex{}
var wg = &sync.WaitGroup{}
var one = &sync.Once{}

func Init() {
	one.Do(func() {
		onShutdown = make([]func() error, 0, 16)
		ctx, cancel = context.WithCancel(context.Background())
		isInitialized = true

		exitCh = make(chan os.Signal, 1) // we need to reserve to buffer size 1, so the notifier are not blocked
		signal.Notify(exitCh, os.Interrupt, syscall.SIGTERM)
		go callOnShutdown()
	})
}

// Context is cancelled once the stop signal is received. Before Init it
// is never cancelled.
func Context() context.Context {
	if !isInitialized {
		return context.Background()
	}
	return ctx
}

// Run starts fn in a goroutine that Wait waits for. Without Init it does nothing.
func Run(fn func()) {
	if !isInitialized {
		return
	}
	wg.Add(1)
	go (func() {
		defer wg.Done()
		fn()
	})()
}

func OnShutdown(fn func() error) {
	if !isInitialized {
		return
	}

	mtx.Lock()
	defer mtx.Unlock()

	onShutdown = append(onShutdown, fn)
}

func Shutdown() {
	if !isInitialized {
		return
	}
	select {
	case exitCh <- os.Interrupt:
	default:
	}
}

func Wait() {
	wg.Wait()
}

func callOnShutdown() {
	logrus.Info("[Signal] Waiting stop signal")

	<-exitCh
	mtx.Lock()
	defer mtx.Unlock()

	logrus.Info("[Signal] Stop signal received, shutdown initiated")
	cancel()
	for _, f := range onShutdown {
		if err := f(); err != nil {
			logrus.Errorf("[Signal] shutdown hook failed: %s", err)
		}
	}
}
