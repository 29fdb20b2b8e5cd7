// Package setting provides the settings store accessor: per tenant key/value rows
// read and written with upsert semantics.
package setting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

const (
	scopeQueryPattern = "tenant_id = ? AND category = ?"
	rowQueryPattern   = "tenant_id = ? AND setting_key = ? AND category = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when attempting to write a setting with an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrCategoryEmpty is returned when no category is given.
	ErrCategoryEmpty = errors.New("setting category cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to insert a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrInvalidScope is returned for a tenant scope without a usable id.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrValueEmpty is returned when attempting to write the zero value.
	ErrValueEmpty = errors.New("setting value cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// conflictColumns is the uniqueness key of a setting row.
var conflictColumns = []clause.Column{ //nolint:gochecknoglobals
	{Name: "tenant_id"},
	{Name: "setting_key"},
	{Name: "category"},
}

// Store reads and writes setting rows through gorm.
type Store struct {
	db *gorm.DB
}

// New creates a store on top of db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// TenantID maps a scope to the tenant_id column value.
func TenantID(scope settings.Scope) (string, error) {
	if !scope.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope.TenantID())
	}

	if scope.IsGlobal() {
		return settings.ReservedTenantID, nil
	}

	return scope.TenantID(), nil
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

func (s *Store) prepare(
	ctx context.Context,
	scope settings.Scope,
	key string,
	value settings.Value,
	category string,
) (*gorm.DB, *models.SettingRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	tenantID, err := TenantID(scope)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case key == "":
		return nil, nil, ErrSettingKeyEmpty
	case category == "":
		return nil, nil, ErrCategoryEmpty
	case value.IsZero():
		return nil, nil, ErrValueEmpty
	}

	return db, &models.SettingRecord{
		TenantID: tenantID,
		Key:      key,
		Value:    value,
		Category: category,
	}, nil
}

// Query returns all settings of a scope and category in insertion order.
func (s *Store) Query(ctx context.Context, scope settings.Scope, category string) ([]settings.Entry, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	tenantID, err := TenantID(scope)
	if err != nil {
		return nil, err
	}

	if category == "" {
		return nil, ErrCategoryEmpty
	}

	var records []models.SettingRecord
	if err = db.Where(scopeQueryPattern, tenantID, category).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query settings of %s: %w", scope, err)
	}

	entries := make([]settings.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, settings.Entry{Key: r.Key, Value: r.Value, UpdatedAt: r.UpdatedAt})
	}

	return entries, nil
}

// Get returns a single setting.
func (s *Store) Get(ctx context.Context, scope settings.Scope, key, category string) (*settings.Entry, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	tenantID, err := TenantID(scope)
	if err != nil {
		return nil, err
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var record models.SettingRecord

	result := db.Where(rowQueryPattern, tenantID, key, category).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, fmt.Errorf("get setting %s of %s: %w", key, scope, result.Error)
	}

	return &settings.Entry{Key: record.Key, Value: record.Value, UpdatedAt: record.UpdatedAt}, nil
}

// UpsertIfAbsent inserts the setting unless a row for the same key already exists.
// A conflicting row is left untouched; inserted reports whether a row was written.
func (s *Store) UpsertIfAbsent(
	ctx context.Context,
	scope settings.Scope,
	key string,
	value settings.Value,
	category string,
) (bool, error) {
	db, record, err := s.prepare(ctx, scope, key, value, category)
	if err != nil {
		return false, err
	}

	result := db.Clauses(clause.OnConflict{Columns: conflictColumns, DoNothing: true}).Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("upsert setting %s of %s: %w", key, scope, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Insert writes a new setting. The caller has already checked that the key is absent.
func (s *Store) Insert(
	ctx context.Context,
	scope settings.Scope,
	key string,
	value settings.Value,
	category string,
) error {
	db, record, err := s.prepare(ctx, scope, key, value, category)
	if err != nil {
		return err
	}

	var count int64
	if err = db.Model(&models.SettingRecord{}).
		Where(rowQueryPattern, record.TenantID, key, category).
		Count(&count).Error; err != nil {
		return fmt.Errorf("insert setting %s of %s: %w", key, scope, err)
	}

	if count > 0 {
		return ErrSettingAlreadyExists
	}

	if err = db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSettingAlreadyExists
		}

		return fmt.Errorf("insert setting %s of %s: %w", key, scope, err)
	}

	return nil
}

// Update overwrites the value of an existing setting.
func (s *Store) Update(
	ctx context.Context,
	scope settings.Scope,
	key string,
	value settings.Value,
	category string,
) error {
	db, record, err := s.prepare(ctx, scope, key, value, category)
	if err != nil {
		return err
	}

	result := db.Model(&models.SettingRecord{}).
		Where(rowQueryPattern, record.TenantID, key, category).
		Updates(map[string]any{
			"setting_value": value,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update setting %s of %s: %w", key, scope, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// Set creates or overwrites a setting (upsert operation).
func (s *Store) Set(
	ctx context.Context,
	scope settings.Scope,
	key string,
	value settings.Value,
	category string,
) error {
	db, record, err := s.prepare(ctx, scope, key, value, category)
	if err != nil {
		return err
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   conflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("set setting %s of %s: %w", key, scope, result.Error)
	}

	return nil
}

// ListTenants returns the tenant directory in creation order.
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var tenants []models.Tenant
	if err = db.Order("created_at").Order("id").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, nil
}
