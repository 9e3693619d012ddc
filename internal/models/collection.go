package models

import (
	"time"
)

// LikedCollectionName is the reserved collection backing the per-company
// liked flag. It is created by the seed and must not be deleted.
const LikedCollectionName = "Liked Companies"

// CompanyCollection is a named set of companies
type CompanyCollection struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"` // UUID
	CollectionName string    `gorm:"not null;index;column:collection_name" json:"collection_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (CompanyCollection) TableName() string {
	return "company_collections"
}

// CompanyCollectionAssociation is a membership edge between a company and a
// collection. The unique index makes inserts idempotent.
type CompanyCollectionAssociation struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	CompanyID    int       `gorm:"not null;uniqueIndex:uq_company_collection;column:company_id" json:"company_id"`
	CollectionID string    `gorm:"not null;type:uuid;uniqueIndex:uq_company_collection;column:collection_id" json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (CompanyCollectionAssociation) TableName() string {
	return "company_collection_associations"
}
