package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		RateLimitBackoff: time.Millisecond,
	}
}

func alwaysRetry(error) Action { return Retry }

func TestDo_SucceedsFirstTry(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), fastPolicy(), alwaysRetry, func() (int, error) {
		attempts++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), fastPolicy(), alwaysRetry, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestDo_StopIsPermanent(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), fastPolicy(), func(error) Action { return Stop }, func() (int, error) {
		attempts++
		return 0, errors.New("fatal")
	})
	var perm *PermanentError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, 1, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), fastPolicy(), alwaysRetry, func() (int, error) {
		attempts++
		return 0, errors.New("still broken")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fastPolicy()
	p.InitialBackoff = time.Minute
	_, err := Do(ctx, p, alwaysRetry, func() (int, error) {
		return 0, errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoVoid(t *testing.T) {
	err := DoVoid(context.Background(), fastPolicy(), alwaysRetry, func() error { return nil })
	assert.NoError(t, err)
}
