package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sparti-cms/sparti-settings/internal/config"
	"github.com/sparti-cms/sparti-settings/internal/db/models"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.DB{
		GormEngine:  config.EngineSQLite,
		Path:        filepath.Join(t.TempDir(), "settings.db"),
		AutoMigrate: true,
	}

	db, err := Open(cfg)
	require.NoError(t, err)

	for _, model := range []any{&models.Tenant{}, &models.SettingRecord{}, &models.SchemaDocument{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	// migrating twice is a no-op
	require.NoError(t, Migrate(db))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(nil)
	require.ErrorIs(t, err, ErrConfigNil)

	_, err = Open(&config.DB{GormEngine: "oracle"})
	require.ErrorIs(t, err, config.ErrUnsupportedGormEngine)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		engine string
		name   string
	}{
		{engine: config.EngineSQLite, name: "sqlite"},
		{engine: config.EngineMySQL, name: "mysql"},
		{engine: config.EnginePostgres, name: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d, err := Dialector(&config.DB{GormEngine: tt.engine, Path: "x.db", Host: "localhost", Port: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Error, gormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, gormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}

func TestClose(t *testing.T) {
	db, err := Open(&config.DB{
		GormEngine: config.EngineSQLite,
		Path:       filepath.Join(t.TempDir(), "close.db"),
	})
	require.NoError(t, err)

	require.NoError(t, Close(db))
	require.NoError(t, Close(nil))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.Error(t, sqlDB.Ping())
}
