package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yatube/internal/config"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, DSN: "x"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?_foreign_keys=on"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb, zap.NewNop()))

	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
	assert.False(t, gdb.Migrator().HasIndex("follows", "idx_follows_user_author"))
}
