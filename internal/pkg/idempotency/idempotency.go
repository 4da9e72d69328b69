// Package idempotency guards one-shot operations with a per-key state
// machine (none → in_progress → completed | failed). The state lives in
// redis when several processes share work, or in memory for a single one.
package idempotency

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // operation already in progress
	StateCompleted  State = "completed"   // operation already completed
	StateFailed     State = "failed"      // previously operation failed
	StateError      State = "error"       // this operation error
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn at most once per key within the state TTL.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// backend is the minimal key-value surface a tracker needs.
type backend interface {
	setNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	get(ctx context.Context, key string) (string, bool, error)
	set(ctx context.Context, key, value string, ttl time.Duration) error
}

// StateTracker implements Idempotency on top of a backend.
type StateTracker struct {
	store  backend
	prefix string
}

const (
	defaultPrefix       = "idempotency:"
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress claim blocks other callers.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithStateTTL sets how long a completed or failed state is remembered.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// Acquire tries to claim key. StateNone means the caller owns the claim.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	acquired, err := s.store.setNX(ctx, fk, StateInProgress.String(), lockDuration)
	if err != nil {
		return StateError, err
	}
	if acquired {
		return StateNone, nil
	}

	result, ok, err := s.store.get(ctx, fk)
	if err != nil {
		return StateError, err
	}
	if !ok {
		// Expired between SETNX and GET.
		acquired, err = s.store.setNX(ctx, fk, StateInProgress.String(), lockDuration)
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}
		return StateError, ErrInvalidState
	}

	switch State(result) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(result), nil
	default:
		return StateError, ErrInvalidState
	}
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.store.set(ctx, s.prefix+key, StateCompleted.String(), ttl)
}

func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.store.set(ctx, s.prefix+key, StateFailed.String(), ttl)
}

// Exec claims key, runs fn and records the outcome. The error from fn is
// returned unchanged; a failure to record the outcome is joined to it.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.MarkFailed(context.WithoutCancel(ctx), key, execOpt.stateTTL))
	}

	return s.MarkCompleted(context.WithoutCancel(ctx), key, execOpt.stateTTL)
}
