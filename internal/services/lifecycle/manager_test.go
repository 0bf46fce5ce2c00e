package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, zap.NewNop())
	var order []string
	for _, name := range []string{"store", "monitor", "http_server"} {
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	m.Register("nil", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "monitor", "store"}, order)
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(0, nil)
	errStore := errors.New("store close failed")
	ran := false
	m.Register("store", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("cache", func(context.Context) error { return errStore })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, errStore)
	assert.True(t, ran)
}

func TestShutdownOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("store", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestShutdownHookSeesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}
