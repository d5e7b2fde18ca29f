package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-booking/internal/config"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "reservas.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(t.Context(), db, DriverSQLite))
	require.NoError(t, Migrate(t.Context(), db, DriverSQLite))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_reservas_%'`).Scan(&n))
	assert.Equal(t, 4, n)

	var unique int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND sql LIKE '%UNIQUE%'`).Scan(&unique))
	assert.Zero(t, unique, "the slot triple is not a database constraint")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Config{DBDriver: "postgres"})
	assert.Error(t, err)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(config.Config{DBDriver: "", DBPath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

// legacyDDL is the reservas table as older deployments created it, before
// the timestamp columns.
const legacyDDL = `CREATE TABLE IF NOT EXISTS reservas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre TEXT NOT NULL,
	apellido TEXT NOT NULL,
	dni TEXT NOT NULL,
	cargo TEXT NOT NULL,
	fecha TEXT NOT NULL,
	horario TEXT NOT NULL,
	espacio TEXT NOT NULL,
	duracion INTEGER NOT NULL
)`

func TestMigrateUpgradesLegacyTable(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "reservas.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(legacyDDL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO reservas (nombre, apellido, dni, cargo, fecha, horario, espacio, duracion)
		VALUES ('Ana', 'Gomez', '12345678', 'Alumno', '2024-05-01', '10:00', 'Biblioteca', 60)`)
	require.NoError(t, err)

	require.NoError(t, Migrate(t.Context(), db, DriverSQLite))
	require.NoError(t, Migrate(t.Context(), db, DriverSQLite))

	cols, err := sqliteColumns(t.Context(), db, "reservas")
	require.NoError(t, err)
	assert.True(t, cols["created_at"])
	assert.True(t, cols["updated_at"])

	var created, updated string
	require.NoError(t, db.QueryRow(`SELECT CAST(created_at AS TEXT), CAST(updated_at AS TEXT) FROM reservas`).Scan(&created, &updated))
	assert.NotEqual(t, legacyTimestamp, created, "existing rows are backfilled")
	assert.NotEqual(t, legacyTimestamp, updated)
}
