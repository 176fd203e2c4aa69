package database

import (
	"testing"

	"classifieds_backend/internal/config"
	"classifieds_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSQLiteForeignKeys(t *testing.T) {
	assert.Equal(t, "file:a.db?_foreign_keys=1", withSQLiteForeignKeys("file:a.db"))
	assert.Equal(t, "file:a?mode=memory&_foreign_keys=1", withSQLiteForeignKeys("file:a?mode=memory"))
	assert.Equal(t, "file:a?_fk=1", withSQLiteForeignKeys("file:a?_fk=1"))
}

func TestOpenAndAutoMigrate_Idempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.Database.LogLevel = "silent"

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db), "second run must be a no-op")

	for _, m := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"
	cfg.Database.DSN = "x"

	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestSQLiteLower_FoldsNonASCII(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.Database.LogLevel = "silent"

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	var got string
	require.NoError(t, db.Raw("SELECT lower(?)", "ВЕЛОСИПЕД Bike").Scan(&got).Error)
	assert.Equal(t, "велосипед bike", got)

	var isNull bool
	require.NoError(t, db.Raw("SELECT lower(NULL) IS NULL").Scan(&isNull).Error)
	assert.True(t, isNull)
}
