package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecState_Unknown(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))

	_, _, found, err := SpecState(sqlDB, "a.dspec")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordSpec_StoresHashAndTests(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))

	tests := []TestRow{
		{Scope: "outer", Name: "a", Line: 2},
		{Scope: "outer/inner", Name: "b", Async: true, Line: 5},
	}
	require.NoError(t, RecordSpec(sqlDB, "a.dspec", "h1", "a_dspec_test.go", tests))

	hash, output, found, err := SpecState(sqlDB, "a.dspec")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "h1", hash)
	assert.Equal(t, "a_dspec_test.go", output)

	rows, err := ListTests(sqlDB)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, TestRow{Spec: "a.dspec", Scope: "outer", Name: "a", Line: 2}, rows[0])
	assert.True(t, rows[1].Async)
}

func TestRecordSpec_ReplacesEarlierRun(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))

	require.NoError(t, RecordSpec(sqlDB, "a.dspec", "h1", "out.go", []TestRow{{Scope: "g", Name: "old", Line: 1}}))
	require.NoError(t, RecordSpec(sqlDB, "a.dspec", "h2", "out.go", []TestRow{{Scope: "g", Name: "new", Line: 1}}))

	hash, _, _, err := SpecState(sqlDB, "a.dspec")
	require.NoError(t, err)
	assert.Equal(t, "h2", hash)

	rows, err := ListTests(sqlDB)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].Name)

	var specs int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM specs`).Scan(&specs))
	assert.Equal(t, 1, specs)
}

func TestOpen_EnablesWALAndMigrates(t *testing.T) {
	path := t.TempDir() + "/dspec.db"
	sqlDB, err := Open(path)
	require.NoError(t, err)
	defer sqlDB.Close()

	var mode string
	require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var version int
	require.NoError(t, sqlDB.QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, len(All), version)
}
