package merge

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// retryWithBackoff runs operation up to maxAttempts times with quadratic
// backoff between attempts (500ms, 2s, 4.5s, ...). taskLogger, when non-nil,
// receives per-attempt progress messages for the task's message log.
func retryWithBackoff(taskID string, operation func() error, maxAttempts int, taskLogger func(taskID, msg string)) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 && taskLogger != nil {
				taskLogger(taskID, fmt.Sprintf("Operation succeeded on retry %d/%d", attempt, maxAttempts))
			}
			return nil
		}

		lastErr = err

		// Don't sleep after last attempt
		if attempt < maxAttempts {
			backoffDuration := time.Duration(500*attempt*attempt) * time.Millisecond
			if taskLogger != nil {
				taskLogger(taskID, fmt.Sprintf("Attempt %d/%d failed: %v (retrying in %v)", attempt, maxAttempts, err, backoffDuration))
			}
			log.WithField("task_id", taskID).Warnf("Retry %d/%d after %v: %v", attempt, maxAttempts, backoffDuration, err)
			time.Sleep(backoffDuration)
		} else {
			if taskLogger != nil {
				taskLogger(taskID, fmt.Sprintf("All %d attempts failed: %v", maxAttempts, err))
			}
			log.WithField("task_id", taskID).Errorf("All %d attempts failed: %v", maxAttempts, err)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
