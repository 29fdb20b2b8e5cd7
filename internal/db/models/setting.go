// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// SettingRecord is one persisted setting value of a tenant (or of the global scope).
// At most one row exists per (tenant, key, category).
type SettingRecord struct {
	// ID is the row identifier; it also preserves insertion order.
	ID uint64 `gorm:"primaryKey"`
	// TenantID is the owning tenant, or settings.ReservedTenantID for the global scope.
	TenantID string `gorm:"size:64;not null;uniqueIndex:idx_tenant_key_category"`
	// Key is the schema key.
	Key string `gorm:"column:setting_key;size:100;not null;uniqueIndex:idx_tenant_key_category"`
	// Value is stored as JSON text so the primitive type survives the round trip.
	Value settings.Value `gorm:"column:setting_value;type:text;not null"`
	// Category groups keys of one schema, e.g. "branding".
	Category string `gorm:"size:50;not null;uniqueIndex:idx_tenant_key_category"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp of the last write (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the SettingRecord model.
func (SettingRecord) TableName() string {
	return "site_settings"
}
