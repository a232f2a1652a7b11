package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddRunNowRemove(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32

	require.NoError(t, s.Add("expire-quotations", "0 0 2 * * *", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, []string{"expire-quotations"}, s.Jobs())

	require.NoError(t, s.RunNow("expire-quotations"))
	assert.Equal(t, int32(1), runs.Load())

	s.Remove("expire-quotations")
	assert.Empty(t, s.Jobs())
	assert.Error(t, s.RunNow("expire-quotations"))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.Add("bad", "every day", func(context.Context) error { return nil }))
	// five-field specs lack the seconds field
	assert.Error(t, s.Add("five", "0 2 * * *", func(context.Context) error { return nil }))
}

func TestScheduler_RunNowPropagatesError(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("db down")
	require.NoError(t, s.Add("job", "@daily", func(context.Context) error { return boom }))
	assert.ErrorIs(t, s.RunNow("job"), boom)
}

func TestScheduler_FiresAndStops(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{}, 10)
	var sawCancel atomic.Bool

	require.NoError(t, s.Add("tick", "* * * * * *", func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	}))

	_, ok := s.Next("tick")
	assert.True(t, ok)

	s.Start()
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}
	s.Stop()
	assert.True(t, sawCancel.Load())
}
