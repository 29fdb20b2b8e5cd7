package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

var errStoreDown = errors.New("store down")

func exampleSchema() *settings.Schema {
	return &settings.Schema{
		Key:      "branding_settings",
		Version:  "1.0.0",
		Category: "branding",
		Fields: []settings.Field{
			{Key: "site_name", Type: settings.TypeString, Default: settings.Str("")},
			{
				Key:         "color_primary",
				Type:        settings.TypeString,
				Constraints: settings.Constraints{Pattern: "^#[0-9A-Fa-f]{6}$"},
				Default:     settings.Str("#3B82F6"),
			},
		},
	}
}

func setupTestStore(t *testing.T, tenantIDs ...string) (*gorm.DB, *setting.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// batches may run concurrently; sqlite allows a single writer
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Tenant{}, &models.SettingRecord{})
	require.NoError(t, err, "failed to migrate test database")

	now := time.Now()
	for i, id := range tenantIDs {
		tenant := models.Tenant{ID: id, Name: "Tenant " + id, CreatedAt: now.Add(time.Duration(i) * time.Second)}
		require.NoError(t, db.Create(&tenant).Error, "failed to seed tenant")
	}

	return db, setting.New(db)
}

func newTestEngine(t *testing.T, store Store, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)

	e, err := New(store, exampleSchema(), opts...)
	require.NoError(t, err)

	return e
}

func seed(t *testing.T, store *setting.Store, scope settings.Scope, values map[string]settings.Value) {
	t.Helper()

	for key, value := range values {
		require.NoError(t, store.Set(context.Background(), scope, key, value, "branding"))
	}
}

func values(t *testing.T, store Store, scope settings.Scope) map[string]settings.Value {
	t.Helper()

	entries, err := store.Query(context.Background(), scope, "branding")
	require.NoError(t, err)

	out := make(map[string]settings.Value, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}

	return out
}

// failingStore fails every write to one tenant.
type failingStore struct {
	Store
	tenantID string
}

func (f *failingStore) fails(scope settings.Scope) bool {
	return !scope.IsGlobal() && scope.TenantID() == f.tenantID
}

func (f *failingStore) Insert(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) error {
	if f.fails(scope) {
		return errStoreDown
	}

	return f.Store.Insert(ctx, scope, key, value, category)
}

func (f *failingStore) Update(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) error {
	if f.fails(scope) {
		return errStoreDown
	}

	return f.Store.Update(ctx, scope, key, value, category)
}

func (f *failingStore) UpsertIfAbsent(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) (bool, error) {
	if f.fails(scope) {
		return false, errStoreDown
	}

	return f.Store.UpsertIfAbsent(ctx, scope, key, value, category)
}

// exhaustedStore accepts a fixed number of default writes, then fails.
type exhaustedStore struct {
	Store
	writesLeft int
}

func (s *exhaustedStore) UpsertIfAbsent(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) (bool, error) {
	if s.writesLeft == 0 {
		return false, errStoreDown
	}

	s.writesLeft--

	return s.Store.UpsertIfAbsent(ctx, scope, key, value, category)
}

// brokenDirectory can not list tenants.
type brokenDirectory struct {
	Store
}

func (brokenDirectory) ListTenants(context.Context) ([]models.Tenant, error) {
	return nil, errStoreDown
}

func TestNew(t *testing.T) {
	_, store := setupTestStore(t)

	_, err := New(nil, exampleSchema())
	require.ErrorIs(t, err, ErrStoreNil)

	_, err = New(store, nil)
	require.ErrorIs(t, err, ErrSchemaNil)

	broken := exampleSchema()
	broken.Fields[1].Default = settings.Str("blue")
	_, err = New(store, broken)
	require.ErrorIs(t, err, settings.ErrDefaultInvalid)
}

func TestMissingKeys(t *testing.T) {
	_, store := setupTestStore(t, "a")
	e := newTestEngine(t, store)
	scope := settings.Tenant("a")

	report, err := e.MissingKeys(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, GapReport{
		Scope:         "a",
		Total:         2,
		ExistingCount: 0,
		MissingCount:  2,
		MissingKeys:   []string{"site_name", "color_primary"},
	}, report)

	seed(t, store, scope, map[string]settings.Value{
		"color_primary": settings.Str("#000000"),
		"legacy_key":    settings.Str("ignored"),
	})

	report, err = e.MissingKeys(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ExistingCount)
	assert.Equal(t, 1, report.MissingCount)
	assert.Equal(t, []string{"site_name"}, report.MissingKeys)
	assert.False(t, report.Complete())
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "a")
	e := newTestEngine(t, store)
	scope := settings.Tenant("a")

	first, err := e.EnsureDefaults(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	after := values(t, store, scope)

	second, err := e.EnsureDefaults(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, FillResult{Added: 0, Keys: []string{}}, second)
	assert.Equal(t, after, values(t, store, scope))
}

func TestEnsureDefaultsKeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "a")
	e := newTestEngine(t, store)
	scope := settings.Tenant("a")

	seed(t, store, scope, map[string]settings.Value{"site_name": settings.Str("Acme")})

	result, err := e.EnsureDefaults(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, FillResult{Added: 1, Keys: []string{"color_primary"}}, result)
	assert.Equal(t, settings.Str("Acme"), values(t, store, scope)["site_name"])
}

func TestEnsureDefaultsPropagatesStoreErrors(t *testing.T) {
	_, store := setupTestStore(t, "a")
	e := newTestEngine(t, &failingStore{Store: store, tenantID: "a"})

	_, err := e.EnsureDefaults(context.Background(), settings.Tenant("a"))
	require.ErrorIs(t, err, errStoreDown)
}

func TestEnsureDefaultsReportsPartialFill(t *testing.T) {
	_, store := setupTestStore(t, "a")
	e := newTestEngine(t, &exhaustedStore{Store: store, writesLeft: 1})

	result, err := e.EnsureDefaults(context.Background(), settings.Tenant("a"))
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, FillResult{Added: 1, Keys: []string{"site_name"}}, result)
	assert.Len(t, values(t, store, settings.Tenant("a")), 1)
}

func TestEnsureAllTenantsHaveDefaults(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "a", "b", "c")
	e := newTestEngine(t, store)

	seed(t, store, settings.Tenant("b"), map[string]settings.Value{"site_name": settings.Str("Beta")})

	batch, err := e.EnsureAllTenantsHaveDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.TenantsProcessed)
	assert.Equal(t, 3, batch.Succeeded)
	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, []string{"color_primary"}, batch.Results[1].Inserted)
	assert.Equal(t, "Tenant b", batch.Results[1].TenantName)

	for _, id := range []string{"a", "b", "c"} {
		gap, err := e.MissingKeys(ctx, settings.Tenant(id))
		require.NoError(t, err)
		assert.Zero(t, gap.MissingCount, id)
	}
}

func TestEnsureAllTenantsHaveDefaultsReportsFailures(t *testing.T) {
	_, store := setupTestStore(t, "a", "b", "c")
	e := newTestEngine(t, &failingStore{Store: store, tenantID: "b"})

	batch, err := e.EnsureAllTenantsHaveDefaults(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	assert.False(t, batch.Results[1].Success)
	assert.Contains(t, batch.Results[1].Error, errStoreDown.Error())
}

func TestSyncSettingsPolicies(t *testing.T) {
	testCases := []struct {
		name          string
		opts          SyncOptions
		expectedValue settings.Value
		expected      SyncReport
	}{
		{
			name:          "fill missing keeps existing value",
			opts:          SyncOptions{Policy: PolicyFromFlags(false, true)},
			expectedValue: settings.Str("v1"),
			expected: SyncReport{
				TenantID: "t",
				Inserted: []string{"color_primary"},
				Updated:  []string{},
				Skipped:  []string{"site_name"},
				Success:  true,
			},
		},
		{
			name:          "overwrite replaces existing value",
			opts:          SyncOptions{Policy: PolicyFromFlags(true, false)},
			expectedValue: settings.Str("v2"),
			expected: SyncReport{
				TenantID: "t",
				Inserted: []string{"color_primary"},
				Updated:  []string{"site_name"},
				Skipped:  []string{},
				Success:  true,
			},
		},
		{
			name:          "overwrite with only missing still skips",
			opts:          SyncOptions{Policy: PolicyFromFlags(true, true)},
			expectedValue: settings.Str("v1"),
			expected: SyncReport{
				TenantID: "t",
				Inserted: []string{"color_primary"},
				Updated:  []string{},
				Skipped:  []string{"site_name"},
				Success:  true,
			},
		},
		{
			name:          "excluded key is never written",
			opts:          SyncOptions{Policy: PolicyOverwriteAll, ExcludeKeys: []string{"site_name", "color_primary"}},
			expectedValue: settings.Str("v1"),
			expected: SyncReport{
				TenantID: "t",
				Inserted: []string{},
				Updated:  []string{},
				Skipped:  []string{"site_name", "color_primary"},
				Success:  true,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			_, store := setupTestStore(t, "s", "t")
			e := newTestEngine(t, store)

			require.NoError(t, store.Insert(ctx, settings.Tenant("s"), "site_name", settings.Str("v2"), "branding"))
			require.NoError(t, store.Insert(ctx, settings.Tenant("s"), "color_primary", settings.Str("#112233"), "branding"))
			require.NoError(t, store.Insert(ctx, settings.Tenant("t"), "site_name", settings.Str("v1"), "branding"))

			report, err := e.SyncSettings(ctx, settings.Tenant("s"), settings.Tenant("t"), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, report)

			got := values(t, store, settings.Tenant("t"))
			assert.Equal(t, tc.expectedValue, got["site_name"])

			if slices.Contains(tc.opts.ExcludeKeys, "color_primary") {
				assert.NotContains(t, got, "color_primary")
			}
		})
	}
}

func TestSyncSettingsErrors(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "a", "b")

	_, err := newTestEngine(t, store).SyncSettings(ctx, settings.Tenant("a"), settings.Tenant("a"), SyncOptions{})
	require.ErrorIs(t, err, ErrSameScope)

	seed(t, store, settings.Global(), map[string]settings.Value{"site_name": settings.Str("Acme")})

	report, err := newTestEngine(t, &failingStore{Store: store, tenantID: "b"}).
		SyncSettings(ctx, settings.Global(), settings.Tenant("b"), SyncOptions{})
	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, report.Success)
}

func TestSyncAllTenantsFromMaster(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "master", "a", "b")
	e := newTestEngine(t, store)

	seed(t, store, settings.Tenant("master"), map[string]settings.Value{"site_name": settings.Str("Acme")})
	seed(t, store, settings.Tenant("b"), map[string]settings.Value{"site_name": settings.Str("Beta")})

	batch, err := e.SyncAllTenantsFromMaster(ctx, settings.Tenant("master"), SyncOptions{})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	for _, r := range batch.Results {
		assert.NotEqual(t, "master", r.TenantID)
	}

	assert.Equal(t, []string{"site_name"}, batch.Results[0].Inserted)
	assert.Equal(t, []string{"site_name"}, batch.Results[1].Skipped)
	assert.Equal(t, settings.Str("Beta"), values(t, store, settings.Tenant("b"))["site_name"])
}

func TestSyncAllTenantsFromMasterIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "t1", "t2", "t3")

	require.NoError(t, store.Insert(ctx, settings.Global(), "site_name", settings.Str("Acme"), "branding"))
	require.NoError(t, store.Insert(ctx, settings.Global(), "color_primary", settings.Str("#112233"), "branding"))
	seed(t, store, settings.Tenant("t3"), map[string]settings.Value{"site_name": settings.Str("Three")})

	for _, limit := range []int{1, 3} {
		e := newTestEngine(t, &failingStore{Store: store, tenantID: "t2"}, WithConcurrency(limit))

		batch, err := e.SyncAllTenantsFromMaster(ctx, settings.Global(), SyncOptions{Policy: PolicyOverwriteAll})
		require.NoError(t, err)
		require.Len(t, batch.Results, 3)
		assert.Equal(t, 3, batch.TenantsProcessed)
		assert.Equal(t, 1, batch.Failed)

		assert.Equal(t, "t1", batch.Results[0].TenantID)
		assert.True(t, batch.Results[0].Success)

		assert.Equal(t, "t2", batch.Results[1].TenantID)
		assert.False(t, batch.Results[1].Success)
		assert.NotEmpty(t, batch.Results[1].Error)

		assert.Equal(t, "t3", batch.Results[2].TenantID)
		assert.True(t, batch.Results[2].Success)
		assert.Contains(t, batch.Results[2].Updated, "site_name")
	}

	got := values(t, store, settings.Tenant("t1"))
	assert.Equal(t, settings.Str("Acme"), got["site_name"])
	assert.Equal(t, settings.Str("#112233"), got["color_primary"])
	assert.Empty(t, values(t, store, settings.Tenant("t2")))
}

func TestBatchFailsWhenDirectoryIsDown(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t)
	e := newTestEngine(t, brokenDirectory{Store: store})

	_, err := e.EnsureAllTenantsHaveDefaults(ctx)
	require.ErrorIs(t, err, errStoreDown)

	_, err = e.SyncAllTenantsFromMaster(ctx, settings.Global(), SyncOptions{})
	require.ErrorIs(t, err, errStoreDown)

	_, err = e.GetAllTenantsSyncStatus(ctx)
	require.ErrorIs(t, err, errStoreDown)

	_, err = e.SyncAllTenantsFromMaster(ctx, settings.Tenant(""), SyncOptions{})
	require.ErrorIs(t, err, setting.ErrInvalidScope)
}

func TestGetAllTenantsSyncStatus(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "a", "b", "c")
	e := newTestEngine(t, store, WithConcurrency(2))

	_, err := e.EnsureDefaults(ctx, settings.Tenant("a"))
	require.NoError(t, err)
	seed(t, store, settings.Tenant("b"), map[string]settings.Value{"site_name": settings.Str("Beta")})

	summary, err := e.GetAllTenantsSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTenants)
	assert.Equal(t, 1, summary.CompleteCount)
	assert.Equal(t, 2, summary.IncompleteCount)

	require.Len(t, summary.Tenants, 3)
	assert.True(t, summary.Tenants[0].Complete)
	assert.Equal(t, []string{"color_primary"}, summary.Tenants[1].MissingKeys)
	assert.Equal(t, 2, summary.Tenants[2].Missing)
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	_, store := setupTestStore(t, "A")
	e := newTestEngine(t, store)

	result, err := e.EnsureDefaults(ctx, settings.Tenant("A"))
	require.NoError(t, err)
	assert.Equal(t, FillResult{Added: 2, Keys: []string{"site_name", "color_primary"}}, result)
	assert.Equal(t, map[string]settings.Value{
		"site_name":     settings.Str(""),
		"color_primary": settings.Str("#3B82F6"),
	}, values(t, store, settings.Tenant("A")))

	seed(t, store, settings.Global(), map[string]settings.Value{
		"color_primary": settings.Str("#112233"),
		"site_name":     settings.Str("Acme"),
	})

	report, err := e.SyncSettings(ctx, settings.Global(), settings.Tenant("A"), SyncOptions{Policy: PolicyFromFlags(false, true)})
	require.NoError(t, err)
	assert.Empty(t, report.Inserted)
	assert.Empty(t, report.Updated)
	assert.Len(t, report.Skipped, 2)
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, PolicyFillMissingOnly, PolicyFromFlags(false, false))
	assert.Equal(t, PolicyFillMissingOnly, PolicyFromFlags(false, true))
	assert.Equal(t, PolicyFillMissingOnly, PolicyFromFlags(true, true))
	assert.Equal(t, PolicyOverwriteAll, PolicyFromFlags(true, false))

	p, err := ParsePolicy("Overwrite")
	require.NoError(t, err)
	assert.Equal(t, PolicyOverwriteAll, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFillMissingOnly, p)

	_, err = ParsePolicy("merge")
	require.ErrorIs(t, err, ErrUnknownPolicy)

	text, err := PolicyOverwriteAll.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "overwrite", string(text))

	require.NoError(t, p.UnmarshalText([]byte("overwrite")))
	assert.Equal(t, PolicyOverwriteAll, p)
}
