package models

import "github.com/google/uuid"

// PropertyModel is a read-only view of the properties table, which the
// property registry owns. Only the columns needed for existence checks are mapped.
type PropertyModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// PersonModel is a read-only view of the persons table
type PersonModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Active   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PersonModel) TableName() string {
	return "persons"
}
