package collections

import "errors"

// CompanyView is a company row as the dashboard sees it, with the liked flag
// resolved for the current membership of the Liked Companies collection.
type CompanyView struct {
	ID          int    `json:"id"`
	CompanyName string `json:"company_name"`
	Liked       bool   `json:"liked"`
}

// CollectionMetadata describes a collection without its members
type CollectionMetadata struct {
	ID             string `json:"id"`
	CollectionName string `json:"collection_name"`
	Total          int64  `json:"total"`
}

// CollectionPage is one page of a collection's membership
type CollectionPage struct {
	ID             string        `json:"id"`
	CollectionName string        `json:"collection_name"`
	Companies      []CompanyView `json:"companies"`
	Total          int64         `json:"total"`
}

var (
	// ErrCollectionNotFound is returned when a collection id does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCompanyNotFound is returned when one or more requested companies
	// do not exist.
	ErrCompanyNotFound = errors.New("one or more companies not found")

	// ErrNoAssociations is returned when a removal request matches nothing.
	ErrNoAssociations = errors.New("no matching company associations found")
)
