package database

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbacmaster/internal/config"
	"rbacmaster/internal/model"
)

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{
		Driver: DriverSQLite,
		SQLite: config.SQLiteConfig{Path: ":memory:", LogLevel: "silent"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, AutoMigrate(db))
	for _, table := range []interface{}{&model.User{}, &model.Role{}, &model.Menu{}, &model.UserRole{}, &model.RoleMenu{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}

	// 重复迁移无副作用
	require.NoError(t, AutoMigrate(db))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewRedisConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisConnection(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	_, err = NewRedisConnection(&config.RedisConfig{Host: mr.Host(), Port: port})
	assert.Error(t, err)
}
