package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "storefront.db"),
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}

	db, err := NewDatabase(cfg, WithZapLogger(zaptest.NewLogger(t), gormlogger.Warn))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.Equal(t, "sqlite", db.Driver())
	assert.NoError(t, db.Ping(ctx))
	require.NoError(t, db.AutoMigrate(ctx))

	for _, table := range []string{"products", "orders", "order_items", "cart_items"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestDatabase_Transaction(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "tx.db")}
	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(ctx))

	err = db.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Exec("DELETE FROM cart_items").Error
	})
	assert.NoError(t, err)
}
