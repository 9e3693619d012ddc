package merge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"jamdash/internal/models"
	"jamdash/internal/progress"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service owns the merge task lifecycle: it accepts merge requests, enforces
// the global single-flight rule, runs the executor in the background and
// publishes progress to the hub. At most one task is ever pending or running.
type Service struct {
	db        *gorm.DB
	hub       *progress.Hub
	batchSize int
	retention time.Duration

	// createMu serializes the check-then-create sequence in createTask so
	// concurrent requests cannot both pass the single-flight check.
	createMu sync.Mutex
	cron     *cron.Cron
}

// NewService creates a new merge service
func NewService(db *gorm.DB, hub *progress.Hub, batchSize int, retention time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		db:        db,
		hub:       hub,
		batchSize: batchSize,
		retention: retention,
		cron:      cron.New(),
	}
}

// RequestMerge validates the request, creates the task and schedules the
// executor. It returns as soon as the task exists; it never waits for the
// merge itself.
func (s *Service) RequestMerge(req MergeRequest) (*models.MergeTask, error) {
	if err := ValidateMergeRequest(&req); err != nil {
		return nil, err
	}

	var source, target models.CompanyCollection
	if err := s.db.Where("id = ?", req.SourceCollectionID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("source collection %s: %w", req.SourceCollectionID, ErrCollectionNotFound)
		}
		return nil, fmt.Errorf("failed to load source collection: %w", err)
	}
	if err := s.db.Where("id = ?", req.TargetCollectionID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("target collection %s: %w", req.TargetCollectionID, ErrCollectionNotFound)
		}
		return nil, fmt.Errorf("failed to load target collection: %w", err)
	}

	// Total is fixed at creation time; rows added to the source afterwards
	// are not part of this task.
	var total int64
	if err := s.db.Model(&models.CompanyCollectionAssociation{}).
		Where("collection_id = ?", source.ID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count source collection: %w", err)
	}

	task, err := s.createTask(req, int(total))
	if err != nil {
		return nil, err
	}

	s.hub.Publish(task.ID, progress.Event{
		Progress: 0,
		Status:   task.Status,
		Total:    task.Total,
		Message:  task.Message,
	})

	log.WithFields(log.Fields{
		"task_id": task.ID,
		"source":  source.CollectionName,
		"target":  target.CollectionName,
		"total":   task.Total,
	}).Info("Merge task created")

	// The executor owns the task from here on; hand the caller a copy.
	snapshot := *task
	go s.run(task, source.CollectionName, target.CollectionName)

	return &snapshot, nil
}

// createTask is the enforcement point for the single-flight invariant: the
// mutex makes the active-task check and the insert atomic with respect to
// concurrent callers.
func (s *Service) createTask(req MergeRequest, total int) (*models.MergeTask, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	var active int64
	if err := s.db.Model(&models.MergeTask{}).
		Where("status IN ?", []string{models.TaskStatusPending, models.TaskStatusInProgress}).
		Count(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to check for active task: %w", err)
	}
	if active > 0 {
		return nil, ErrTaskInProgress
	}

	task := &models.MergeTask{
		ID:                 uuid.New().String(),
		SourceCollectionID: req.SourceCollectionID,
		TargetCollectionID: req.TargetCollectionID,
		Status:             models.TaskStatusPending,
		Total:              total,
		Message:            "Bulk addition started.",
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task record: %w", err)
	}
	return task, nil
}

// ActiveTask returns the currently pending or running task, or nil. Lets a
// freshly connected client discover work that started before it connected.
func (s *Service) ActiveTask() (*models.MergeTask, error) {
	var task models.MergeTask
	err := s.db.Where("status IN ?", []string{models.TaskStatusPending, models.TaskStatusInProgress}).
		Order("created_at DESC").First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active task: %w", err)
	}
	return &task, nil
}

// RecoverStaleTasks marks tasks left pending or running by a previous
// process as failed. The executor that owned them died with the process, so
// without this the single-flight slot would stay blocked forever. Call once
// at startup, before any new merge can be requested.
func (s *Service) RecoverStaleTasks() error {
	res := s.db.Model(&models.MergeTask{}).
		Where("status IN ?", []string{models.TaskStatusPending, models.TaskStatusInProgress}).
		Updates(map[string]interface{}{
			"status":  models.TaskStatusFailed,
			"message": "Interrupted by server restart",
		})
	if res.Error != nil {
		return fmt.Errorf("failed to recover stale tasks: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Warnf("Marked %d interrupted tasks as failed", res.RowsAffected)
	}
	return nil
}

// GetTask returns a task by id
func (s *Service) GetTask(taskID string) (*models.MergeTask, error) {
	var task models.MergeTask
	err := s.db.Where("id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}

// updateProgress persists the task's new state and publishes the matching
// event. Only the executor goroutine that owns the task calls it.
func (s *Service) updateProgress(task *models.MergeTask, status string, processed int, message string) {
	task.Status = status
	task.Processed = processed
	task.Message = message

	if err := s.db.Model(&models.MergeTask{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":    status,
			"processed": processed,
			"message":   message,
		}).Error; err != nil {
		log.WithField("task_id", task.ID).Warnf("Failed to persist progress: %v", err)
	}

	s.hub.Publish(task.ID, progress.Event{
		Progress: task.Fraction(),
		Status:   status,
		Total:    task.Total,
		Message:  message,
	})

	log.WithFields(log.Fields{
		"task_id":   task.ID,
		"status":    status,
		"processed": processed,
		"total":     task.Total,
	}).Debug(message)
}

// StartJanitor begins periodic pruning of terminal task records that are
// older than the retention window, along with their hub state. Terminal
// tasks are kept long enough for reconnecting clients to observe them.
func (s *Service) StartJanitor() {
	_, err := s.cron.AddFunc("@every 10m", s.pruneExpiredTasks)
	if err != nil {
		log.Errorf("Failed to schedule task janitor: %v", err)
		return
	}
	s.cron.Start()
}

// StopJanitor stops the janitor and waits for a running sweep to finish
func (s *Service) StopJanitor() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Service) pruneExpiredTasks() {
	cutoff := time.Now().Add(-s.retention)

	var expired []models.MergeTask
	if err := s.db.Where("status IN ? AND updated_at < ?",
		[]string{models.TaskStatusCompleted, models.TaskStatusFailed}, cutoff).
		Find(&expired).Error; err != nil {
		log.Warnf("Task janitor query failed: %v", err)
		return
	}

	for _, task := range expired {
		if err := s.db.Delete(&models.MergeTask{}, "id = ?", task.ID).Error; err != nil {
			log.WithField("task_id", task.ID).Warnf("Failed to prune task: %v", err)
			continue
		}
		s.hub.Forget(task.ID)
		log.WithField("task_id", task.ID).Debug("Pruned expired task")
	}
}
