package db

import (
	"path/filepath"
	"testing"

	"aura_oracle/internal/config"
	"aura_oracle/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn, err := DSN(&config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "aura"})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3306)/aura?parseTime=true&loc=UTC", dsn)

	dsn, err = DSN(&config.Config{DBDriver: "postgres", DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "6543", DBName: "aura"})
	require.NoError(t, err)
	assert.Contains(t, dsn, "port=6543")
	assert.Contains(t, dsn, "TimeZone=UTC")

	_, err = DSN(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "app.db")}
	gdb, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	for _, m := range domain.Models() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasIndex(&domain.DailyEntry{}, "uidx_entry_user_date"))
	assert.True(t, gdb.Migrator().HasIndex(&domain.DailyDraw{}, "uidx_draw_user_kind_date"))
}
