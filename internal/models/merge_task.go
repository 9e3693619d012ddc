package models

import (
	"time"
)

// Task statuses. At most one task may be pending or in_progress at a time
// across the whole system.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// MergeTask tracks the progress of a bulk collection-to-collection merge
type MergeTask struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"` // UUID task ID
	SourceCollectionID string    `gorm:"not null;type:uuid;column:source_collection_id" json:"source_collection_id"`
	TargetCollectionID string    `gorm:"not null;type:uuid;column:target_collection_id" json:"target_collection_id"`
	Status             string    `gorm:"not null;default:pending" json:"status"`
	Processed          int       `gorm:"not null;default:0" json:"processed"`
	Total              int       `gorm:"not null;default:0" json:"total"` // fixed at creation
	Message            string    `gorm:"type:text" json:"message"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MergeTask) TableName() string {
	return "merge_tasks"
}

// Terminal reports whether the task has finished, successfully or not.
// Terminal tasks are immutable.
func (t *MergeTask) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Fraction returns the completion fraction in [0, 1]. An empty source
// collection counts as fully done.
func (t *MergeTask) Fraction() float64 {
	if t.Total == 0 {
		if t.Terminal() {
			return 1
		}
		return 0
	}
	return float64(t.Processed) / float64(t.Total)
}
