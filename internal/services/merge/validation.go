package merge

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateMergeRequest validates a merge request before any task is created.
// Merging a collection into itself is rejected as invalid input.
func ValidateMergeRequest(req *MergeRequest) error {
	if req.SourceCollectionID == "" {
		return &ValidationError{"source_collection_id", "required"}
	}
	if _, err := uuid.Parse(req.SourceCollectionID); err != nil {
		return &ValidationError{"source_collection_id", "invalid collection ID format"}
	}

	if req.TargetCollectionID == "" {
		return &ValidationError{"target_collection_id", "required"}
	}
	if _, err := uuid.Parse(req.TargetCollectionID); err != nil {
		return &ValidationError{"target_collection_id", "invalid collection ID format"}
	}

	if req.SourceCollectionID == req.TargetCollectionID {
		return &ValidationError{"target_collection_id", "source and target collections must differ"}
	}

	return nil
}
