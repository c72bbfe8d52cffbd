package database

import (
	"path/filepath"
	"testing"

	"github.com/Egham-7/site-context/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite(t *testing.T) {
	db, err := New(models.DatabaseConfig{
		Type:     models.SQLite,
		FilePath: filepath.Join(t.TempDir(), "site.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, "sqlite3", db.DriverName())
	require.NoError(t, db.Ping())
	require.NoError(t, db.Migrate())
	assert.True(t, db.Migrator().HasTable(&models.Document{}))
}

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		name    string
		cfg     models.DatabaseConfig
		driver  string
		wantErr bool
	}{
		{"postgres", models.DatabaseConfig{Type: models.PostgreSQL, Host: "localhost", Port: 5432}, "postgres", false},
		{"mysql", models.DatabaseConfig{Type: models.MySQL, DSN: "u:p@tcp(localhost:3306)/site"}, "mysql", false},
		{"clickhouse", models.DatabaseConfig{Type: models.ClickHouse, Host: "localhost", Port: 9000}, "clickhouse", false},
		{"sqlite without path", models.DatabaseConfig{Type: models.SQLite}, "", true},
		{"unknown", models.DatabaseConfig{Type: "oracle"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, driver, err := dialectorFor(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, dialector)
			assert.Equal(t, tt.driver, driver)
		})
	}
}
