package models

import (
	"time"
)

// Company is a single company record shown in the dashboard
type Company struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	CompanyName string    `gorm:"not null;index;column:company_name" json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Company) TableName() string {
	return "companies"
}
