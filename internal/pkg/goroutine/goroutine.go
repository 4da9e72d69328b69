// Package goroutine runs named background tasks under a concurrency limit
// and keeps the last outcome of each task name for status reporting.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/authbite/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 16

var (
	// ErrClosed is returned by Go after Wait has been called.
	ErrClosed = errors.New("goroutine: manager is closed")
	// ErrLimitReached is returned by Go when every slot is busy.
	ErrLimitReached = errors.New("goroutine: maximum goroutine limit reached")
	// ErrAlreadyRunning is returned by Go when a task with the same name is running.
	ErrAlreadyRunning = errors.New("goroutine: task already running")
	// ErrPanic wraps a recovered panic value.
	ErrPanic = errors.New("goroutine: task panicked")
)

// Status reports on the most recent run of a named task.
type Status struct {
	Name       string
	Running    bool
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// Errors returned by tasks are collected and returned by Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	status  map[string]Status
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{
		status: make(map[string]Status),
		sema:   make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f under name. The task receives pCtx, so cancelling the
// parent context stops it.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) error {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping task", "task", name)
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(pCtx, "maximum goroutine limit reached", "task", name)
		return ErrLimitReached
	}

	g.mu.Lock()
	if g.status[name].Running {
		g.mu.Unlock()
		<-g.sema
		return ErrAlreadyRunning
	}
	g.status[name] = Status{Name: name, Running: true, StartedAt: time.Now()}
	g.mu.Unlock()

	g.wg.Go(func() {
		defer func() { <-g.sema }()

		err := g.run(pCtx, name, f)
		if err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, fmt.Errorf("%s: %w", name, err))
			g.mu.Unlock()
		}

		g.mu.Lock()
		st := g.status[name]
		st.Running = false
		st.FinishedAt = time.Now()
		st.Err = err
		g.status[name] = st
		g.mu.Unlock()
	})

	return nil
}

func (g *Manager) run(ctx context.Context, name string, f func(context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "stack", stacktrace.Capture())
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	if err := ctx.Err(); err != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", err)
		return err
	}

	return f(ctx)
}

// Status returns the last known status of the named task.
func (g *Manager) Status(name string) (Status, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.status[name]

	return st, ok
}

// Wait closes the manager to new work, blocks until all scheduled tasks
// finish and returns any collected errors.
func (g *Manager) Wait() error {
	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
