package models

import "time"

// Tenant is an isolated customer site. Tenants are provisioned elsewhere;
// this service only reads the directory.
type Tenant struct {
	// ID is the opaque tenant identifier.
	ID string `gorm:"primaryKey;size:64"`
	// Name is the display name of the tenant.
	Name string `gorm:"size:255"`
	// CreatedAt orders the tenant directory.
	CreatedAt time.Time
}

// TableName specifies the database table name for the Tenant model.
func (Tenant) TableName() string {
	return "tenants"
}
