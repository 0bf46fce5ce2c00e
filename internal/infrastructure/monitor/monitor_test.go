package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRefreshRecordsEachComponent(t *testing.T) {
	m := New(time.Minute, zap.NewNop())
	m.Register("store", func(context.Context) error { return nil })
	m.Register("cache", func(context.Context) error { return errors.New("down") })
	m.Register("ignored", nil)

	m.Refresh(context.Background())

	status := m.GetStatus()
	assert.Equal(t, map[string]bool{"store": true, "cache": false}, status.Components)
	assert.False(t, status.LastCheck.IsZero())
	assert.False(t, m.IsOnline())
}

func TestNoChecksIsHealthy(t *testing.T) {
	m := New(0, nil)
	m.Refresh(context.Background())
	assert.True(t, m.IsOnline())
}

func TestStatusIsACopy(t *testing.T) {
	m := New(time.Minute, nil)
	m.Register("store", func(context.Context) error { return nil })
	m.Refresh(context.Background())

	status := m.GetStatus()
	status.Components["store"] = false
	assert.True(t, m.IsOnline())
}

func TestStartRunsImmediatelyAndOnSchedule(t *testing.T) {
	var calls atomic.Int32
	m := New(time.Second, zap.NewNop())
	m.Register("store", func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)

	assert.Equal(t, int32(1), calls.Load())
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	m := New(time.Second, nil)
	assert.NotPanics(t, m.Stop)
}
