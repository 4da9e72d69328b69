package goroutine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Go(t *testing.T) {
	t.Parallel()

	m := NewManager(2)
	boom := errors.New("boom")

	require.NoError(t, m.Go(context.Background(), "ok", func(context.Context) error { return nil }))
	require.NoError(t, m.Go(context.Background(), "fail", func(context.Context) error { return boom }))

	err := m.Wait()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fail: boom")

	st, ok := m.Status("ok")
	require.True(t, ok)
	assert.False(t, st.Running)
	assert.NoError(t, st.Err)
	assert.False(t, st.FinishedAt.Before(st.StartedAt))

	st, ok = m.Status("fail")
	require.True(t, ok)
	assert.ErrorIs(t, st.Err, boom)

	_, ok = m.Status("missing")
	assert.False(t, ok)

	assert.ErrorIs(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }), ErrClosed)
}

func TestManager_Limits(t *testing.T) {
	t.Parallel()

	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, m.Go(context.Background(), "slow", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.ErrorIs(t, m.Go(context.Background(), "other", func(context.Context) error { return nil }), ErrLimitReached)

	st, ok := m.Status("slow")
	require.True(t, ok)
	assert.True(t, st.Running)

	close(release)
	require.NoError(t, m.Wait())
}

func TestManager_AlreadyRunning(t *testing.T) {
	t.Parallel()

	m := NewManager(4)
	release := make(chan struct{})

	require.NoError(t, m.Go(context.Background(), "registration", func(context.Context) error {
		<-release
		return nil
	}))
	assert.ErrorIs(t, m.Go(context.Background(), "registration", func(context.Context) error { return nil }), ErrAlreadyRunning)

	close(release)
	require.NoError(t, m.Wait())
}

func TestManager_PanicAndCancel(t *testing.T) {
	t.Parallel()

	m := NewManager(0)
	require.NoError(t, m.Go(context.Background(), "panics", func(context.Context) error { panic("kaboom") }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	require.NoError(t, m.Go(ctx, "canceled", func(context.Context) error {
		called = true
		return nil
	}))

	err := m.Wait()
	assert.ErrorIs(t, err, ErrPanic)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
