package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDSN(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TEST_POSTGRES_DSN", "")
		t.Setenv("TEST_MYSQL_DSN", "")

		assert.Equal(t, defaultPostgresTestDSN, GetTestDSN("postgres"))
		assert.Equal(t, defaultMySQLTestDSN, GetTestDSN("mysql"))
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TEST_POSTGRES_DSN", "postgres://custom")
		t.Setenv("TEST_MYSQL_DSN", "custom@tcp(db:3306)/x")

		assert.Equal(t, "postgres://custom", GetPostgresTestDSN())
		assert.Equal(t, "custom@tcp(db:3306)/x", GetMySQLTestDSN())
	})
}

func TestGetMigrationsPath(t *testing.T) {
	t.Run("found by walking up", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "migrations", "postgresql"), 0o755))
		nested := filepath.Join(root, "internal", "order")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		t.Chdir(nested)

		path, err := getMigrationsPath("postgresql")

		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(path)
		require.NoError(t, err)
		expected, err := filepath.EvalSymlinks(filepath.Join(root, "migrations", "postgresql"))
		require.NoError(t, err)
		assert.Equal(t, expected, resolved)
	})

	t.Run("not found", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := getMigrationsPath("oracle")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations directory not found for oracle")
	})
}

func TestUUIDToDriverValue(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	pgValue, err := uuidToDriverValue(id, "postgres")
	require.NoError(t, err)
	assert.Equal(t, id, pgValue)

	mysqlValue, err := uuidToDriverValue(id, "mysql")
	require.NoError(t, err)
	assert.Equal(t, id[:], mysqlValue)
}

func TestSetupPostgresDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	SkipIfNoPostgres(t)

	db := SetupPostgresDB(t)
	defer TeardownDB(t, db)

	CreateTestOrder(t, db, "postgres", "ORD-1", "AA123456789BR", "Objeto postado")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count))
	assert.Equal(t, 1, count)

	CleanupDB(t, db, "postgres")
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestSetupMySQLDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	SkipIfNoMySQL(t)

	db := SetupMySQLDB(t)
	defer TeardownDB(t, db)

	CreateTestOrder(t, db, "mysql", "ORD-1", "AA123456789BR", "Objeto postado")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count))
	assert.Equal(t, 1, count)
}
