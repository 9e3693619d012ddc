package merge

import "errors"

// MergeRequest asks for every company in the source collection to be copied
// into the target collection.
type MergeRequest struct {
	SourceCollectionID string `json:"source_collection_id"`
	TargetCollectionID string `json:"target_collection_id"`
}

var (
	// ErrTaskInProgress is returned when a merge is requested while another
	// task is still pending or running. Requests are rejected, not queued.
	ErrTaskInProgress = errors.New("a bulk operation is already in progress")

	// ErrTaskNotFound is returned for lookups of unknown task ids.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCollectionNotFound is returned when either collection id does not
	// resolve to an existing collection.
	ErrCollectionNotFound = errors.New("collection not found")
)
