package helpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"classifieds_backend/internal/auth"
	"classifieds_backend/internal/config"
	"classifieds_backend/internal/database"
	"classifieds_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// TestConfig - конфиг для тестов: sqlite в памяти, дешевый bcrypt
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	cfg.Database.LogLevel = "silent"
	cfg.Auth.BcryptCost = auth.MinCost
	cfg.Workers.TokenCleanupSchedule = ""
	cfg.Storage.BasePath = t.TempDir()
	return cfg
}

// OpenTestDB открывает отдельную базу на каждый тест и мигрирует схему
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return OpenTestDBWithConfig(t, TestConfig(t))
}

func OpenTestDBWithConfig(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := database.Open(cfg)
	require.NoError(t, err, "не удалось открыть тестовую БД")
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser создает пользователя напрямую в БД, пароль хешируется
func CreateUser(t *testing.T, db *gorm.DB, name, password string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPasswordWithCost(password, auth.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: name, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", name)
	return user
}

// CreateAdvertisement создает объявление напрямую в БД
func CreateAdvertisement(t *testing.T, db *gorm.DB, owner *models.User, title, description string, price int) *models.Advertisement {
	t.Helper()

	ad := &models.Advertisement{
		Title:       title,
		Description: description,
		Price:       price,
		UserID:      owner.ID,
	}
	require.NoError(t, db.Create(ad).Error)
	return ad
}
