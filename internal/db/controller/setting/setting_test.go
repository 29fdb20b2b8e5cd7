package setting

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

const testCategory = "branding"

// setupTestDB creates a throw-away SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.Tenant{}, &models.SettingRecord{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, records []models.SettingRecord) {
	t.Helper()

	for _, record := range records {
		err := db.Create(&record).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)

	seedSettings(t, db, []models.SettingRecord{
		{TenantID: "t1", Key: "site_name", Value: settings.Str("Acme"), Category: testCategory},
		{TenantID: "t1", Key: "max_nav_items", Value: settings.Num(4), Category: testCategory},
		{TenantID: "t1", Key: "show_powered_by", Value: settings.Bool(false), Category: testCategory},
		{TenantID: "t1", Key: "other", Value: settings.Str("x"), Category: "seo"},
		{TenantID: "t2", Key: "site_name", Value: settings.Str("Beta"), Category: testCategory},
		{TenantID: settings.ReservedTenantID, Key: "site_name", Value: settings.Str("Global"), Category: testCategory},
	})

	testCases := []struct {
		name          string
		store         *Store
		scope         settings.Scope
		category      string
		expectedError error
		expectedKeys  []string
	}{
		{
			name:          "nil database",
			store:         New(nil),
			scope:         settings.Tenant("t1"),
			category:      testCategory,
			expectedError: ErrDBNil,
		},
		{
			name:          "invalid scope",
			store:         store,
			scope:         settings.Tenant(""),
			category:      testCategory,
			expectedError: ErrInvalidScope,
		},
		{
			name:          "empty category",
			store:         store,
			scope:         settings.Tenant("t1"),
			expectedError: ErrCategoryEmpty,
		},
		{
			name:         "tenant in insertion order",
			store:        store,
			scope:        settings.Tenant("t1"),
			category:     testCategory,
			expectedKeys: []string{"site_name", "max_nav_items", "show_powered_by"},
		},
		{
			name:         "global scope",
			store:        store,
			scope:        settings.Global(),
			category:     testCategory,
			expectedKeys: []string{"site_name"},
		},
		{
			name:         "unknown tenant",
			store:        store,
			scope:        settings.Tenant("nobody"),
			category:     testCategory,
			expectedKeys: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := tc.store.Query(ctx, tc.scope, tc.category)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, entries)

				return
			}

			require.NoError(t, err)

			keys := make([]string, 0, len(entries))
			for _, e := range entries {
				keys = append(keys, e.Key)
			}

			assert.Equal(t, tc.expectedKeys, keys)
		})
	}
}

func TestQueryKeepsValueTypes(t *testing.T) {
	ctx := context.Background()
	store := New(setupTestDB(t))

	require.NoError(t, store.Insert(ctx, settings.Tenant("t1"), "a", settings.Str("6"), testCategory))
	require.NoError(t, store.Insert(ctx, settings.Tenant("t1"), "b", settings.Num(6), testCategory))
	require.NoError(t, store.Insert(ctx, settings.Tenant("t1"), "c", settings.Bool(true), testCategory))

	entries, err := store.Query(ctx, settings.Tenant("t1"), testCategory)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, settings.Str("6"), entries[0].Value)
	assert.Equal(t, settings.Num(6), entries[1].Value)
	assert.Equal(t, settings.Bool(true), entries[2].Value)
}

func TestUpsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := New(setupTestDB(t))
	scope := settings.Tenant("t1")

	inserted, err := store.UpsertIfAbsent(ctx, scope, "site_name", settings.Str("first"), testCategory)
	require.NoError(t, err)
	assert.True(t, inserted)

	// second write is a no-op and never clobbers the stored value
	inserted, err = store.UpsertIfAbsent(ctx, scope, "site_name", settings.Str("second"), testCategory)
	require.NoError(t, err)
	assert.False(t, inserted)

	entry, err := store.Get(ctx, scope, "site_name", testCategory)
	require.NoError(t, err)
	assert.Equal(t, settings.Str("first"), entry.Value)

	// same key in another category is a different row
	inserted, err = store.UpsertIfAbsent(ctx, scope, "site_name", settings.Str("seo"), "seo")
	require.NoError(t, err)
	assert.True(t, inserted)

	_, err = store.UpsertIfAbsent(ctx, scope, "", settings.Str("x"), testCategory)
	require.ErrorIs(t, err, ErrSettingKeyEmpty)

	_, err = store.UpsertIfAbsent(ctx, scope, "k", settings.Value{}, testCategory)
	require.ErrorIs(t, err, ErrValueEmpty)
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	store := New(setupTestDB(t))
	scope := settings.Global()

	require.NoError(t, store.Insert(ctx, scope, "site_name", settings.Str("Acme"), testCategory))

	err := store.Insert(ctx, scope, "site_name", settings.Str("Other"), testCategory)
	require.ErrorIs(t, err, ErrSettingAlreadyExists)

	err = store.Insert(ctx, scope, "site_name", settings.Str("Other"), "")
	require.ErrorIs(t, err, ErrCategoryEmpty)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	scope := settings.Tenant("t1")

	err := store.Update(ctx, scope, "site_name", settings.Str("x"), testCategory)
	require.ErrorIs(t, err, ErrSettingNotFound)

	require.NoError(t, store.Insert(ctx, scope, "site_name", settings.Str("old"), testCategory))

	before, err := store.Get(ctx, scope, "site_name", testCategory)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Update(ctx, scope, "site_name", settings.Str("new"), testCategory))

	after, err := store.Get(ctx, scope, "site_name", testCategory)
	require.NoError(t, err)
	assert.Equal(t, settings.Str("new"), after.Value)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	scope := settings.Tenant("t1")

	require.NoError(t, store.Set(ctx, scope, "site_name", settings.Str("one"), testCategory))
	require.NoError(t, store.Set(ctx, scope, "site_name", settings.Str("two"), testCategory))

	entry, err := store.Get(ctx, scope, "site_name", testCategory)
	require.NoError(t, err)
	assert.Equal(t, settings.Str("two"), entry.Value)

	var count int64
	db.Model(&models.SettingRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	store := New(setupTestDB(t))

	_, err := store.Get(ctx, settings.Tenant("t1"), "missing", testCategory)
	require.ErrorIs(t, err, ErrSettingNotFound)

	_, err = store.Get(ctx, settings.Tenant("t1"), "", testCategory)
	require.ErrorIs(t, err, ErrSettingKeyEmpty)
}

func TestListTenants(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)

	now := time.Now()
	require.NoError(t, db.Create(&models.Tenant{ID: "b", Name: "Beta", CreatedAt: now.Add(time.Minute)}).Error)
	require.NoError(t, db.Create(&models.Tenant{ID: "a", Name: "Acme", CreatedAt: now}).Error)

	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "a", tenants[0].ID)
	assert.Equal(t, "b", tenants[1].ID)

	_, err = New(nil).ListTenants(ctx)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestQueryReadsRowsWrittenAsBareText(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	now := time.Now()

	// rows of other writers do not always hold JSON text
	rows := [][]any{
		{"t1", "site_name", "Acme", testCategory, now, now},
		{"t1", "color_primary", "#111111", testCategory, now, now},
		{"t1", "max_nav_items", "4", testCategory, now, now},
	}
	for _, row := range rows {
		err := db.Exec(
			"INSERT INTO site_settings (tenant_id, setting_key, setting_value, category, created_at, updated_at) "+
				"VALUES (?, ?, ?, ?, ?, ?)", row...,
		).Error
		require.NoError(t, err)
	}

	entries, err := store.Query(ctx, settings.Tenant("t1"), testCategory)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, settings.Str("Acme"), entries[0].Value)
	assert.Equal(t, settings.Str("#111111"), entries[1].Value)
	assert.Equal(t, settings.Num(4), entries[2].Value)

	entry, err := store.Get(ctx, settings.Tenant("t1"), "site_name", testCategory)
	require.NoError(t, err)
	assert.Equal(t, settings.Str("Acme"), entry.Value)
}
