package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Run("Should succeed on first attempt without logging", func(t *testing.T) {
		calls := 0
		var logged []string
		err := retryWithBackoff("task-1", func() error {
			calls++
			return nil
		}, 3, func(taskID, msg string) { logged = append(logged, msg) })

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, logged)
	})

	t.Run("Should succeed on a later attempt", func(t *testing.T) {
		calls := 0
		var logged []string
		err := retryWithBackoff("task-1", func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		}, 2, func(taskID, msg string) { logged = append(logged, msg) })

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		require.Len(t, logged, 2)
		assert.Contains(t, logged[0], "Attempt 1/2 failed")
		assert.Contains(t, logged[1], "Operation succeeded on retry 2/2")
	})

	t.Run("Should give up after maxAttempts and wrap the last error", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := retryWithBackoff("task-1", func() error {
			calls++
			return boom
		}, 2, nil)

		require.Error(t, err)
		assert.Equal(t, 2, calls)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed after 2 attempts")
	})
}
