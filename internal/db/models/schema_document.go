package models

import "time"

// SchemaDocument stores a serialized settings schema for one scope and language.
// The schema evolves independently of the setting values already stored.
type SchemaDocument struct {
	ID        uint64 `gorm:"primaryKey"`
	TenantID  string `gorm:"size:64;not null;uniqueIndex:idx_schema_scope"`
	SchemaKey string `gorm:"size:100;not null;uniqueIndex:idx_schema_scope"`
	Language  string `gorm:"size:16;not null;uniqueIndex:idx_schema_scope"`
	Version   string `gorm:"size:32;not null"`
	Document  string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the SchemaDocument model.
func (SchemaDocument) TableName() string {
	return "site_schemas"
}
