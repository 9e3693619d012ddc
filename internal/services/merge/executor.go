package merge

import (
	"fmt"

	"jamdash/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// insertMaxAttempts bounds how often a failed batch insert is retried before
// the whole task is marked failed.
const insertMaxAttempts = 3

// run executes the merge in the background. It is invoked exactly once per
// task and is the only writer of the task's progress fields. Already-applied
// batches are never rolled back on failure; re-running the merge skips
// associations that are already present.
func (s *Service) run(task *models.MergeTask, sourceName, targetName string) {
	defer func() {
		if r := recover(); r != nil {
			s.updateProgress(task, models.TaskStatusFailed, task.Processed, fmt.Sprintf("Panic during merge: %v", r))
			log.WithField("task_id", task.ID).Errorf("Merge panic recovered: %v", r)
		}
	}()

	doneMsg := fmt.Sprintf("Finished adding %s to %s", sourceName, targetName)

	// An empty source collection is already fully merged.
	if task.Total == 0 {
		s.updateProgress(task, models.TaskStatusCompleted, 0, doneMsg)
		return
	}

	runningMsg := fmt.Sprintf("Adding %s to %s", sourceName, targetName)
	s.updateProgress(task, models.TaskStatusInProgress, 0, runningMsg)

	taskLogger := func(taskID, msg string) {
		s.updateProgress(task, task.Status, task.Processed, msg)
	}

	for offset := 0; offset < task.Total; offset += s.batchSize {
		batch, err := s.sourceBatch(task.SourceCollectionID, offset)
		if err != nil {
			s.updateProgress(task, models.TaskStatusFailed, task.Processed,
				fmt.Sprintf("Failed to read %s: %v", sourceName, err))
			return
		}
		if len(batch) == 0 {
			break
		}

		insert := func() error {
			return s.insertBatch(task.TargetCollectionID, batch)
		}
		if err := retryWithBackoff(task.ID, insert, insertMaxAttempts, taskLogger); err != nil {
			s.updateProgress(task, models.TaskStatusFailed, task.Processed,
				fmt.Sprintf("Failed to copy companies into %s: %v", targetName, err))
			return
		}

		processed := task.Processed + len(batch)
		if processed > task.Total {
			processed = task.Total
		}
		s.updateProgress(task, models.TaskStatusInProgress, processed, runningMsg)
	}

	s.updateProgress(task, models.TaskStatusCompleted, task.Total, doneMsg)
}

// sourceBatch reads one page of source membership. Ordering by company id
// keeps pagination stable across batches, and paging keeps memory constant
// regardless of collection size.
func (s *Service) sourceBatch(collectionID string, offset int) ([]int, error) {
	var ids []int
	err := s.db.Model(&models.CompanyCollectionAssociation{}).
		Where("collection_id = ?", collectionID).
		Order("company_id ASC").
		Limit(s.batchSize).
		Offset(offset).
		Pluck("company_id", &ids).Error
	return ids, err
}

// insertBatch copies one batch of memberships into the target collection.
// Associations already present in the target are skipped, which makes
// re-running a merge idempotent.
func (s *Service) insertBatch(targetCollectionID string, companyIDs []int) error {
	edges := make([]models.CompanyCollectionAssociation, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		edges = append(edges, models.CompanyCollectionAssociation{
			CompanyID:    companyID,
			CollectionID: targetCollectionID,
		})
	}
	// Chunked so a large merge batch stays under SQLite's bind limit.
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&edges, 250).Error
}
