package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The reservas table keeps the column names of the original school
// deployment.  Files created before the timestamp columns existed are
// upgraded by addTimestampColumns.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL,
		apellido TEXT NOT NULL,
		dni TEXT NOT NULL,
		cargo TEXT NOT NULL,
		fecha TEXT NOT NULL,
		horario TEXT NOT NULL,
		espacio TEXT NOT NULL,
		duracion INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservas_fecha ON reservas(fecha)`,
	`CREATE INDEX IF NOT EXISTS idx_reservas_horario ON reservas(horario)`,
	`CREATE INDEX IF NOT EXISTS idx_reservas_espacio ON reservas(espacio)`,
	`CREATE INDEX IF NOT EXISTS idx_reservas_dni ON reservas(dni)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table DDL.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS reservas (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nombre VARCHAR(120) NOT NULL,
		apellido VARCHAR(120) NOT NULL,
		dni VARCHAR(8) NOT NULL,
		cargo VARCHAR(60) NOT NULL,
		fecha CHAR(10) NOT NULL,
		horario CHAR(5) NOT NULL,
		espacio VARCHAR(60) NOT NULL,
		duracion INT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_reservas_fecha (fecha),
		INDEX idx_reservas_horario (horario),
		INDEX idx_reservas_espacio (espacio),
		INDEX idx_reservas_dni (dni)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate ensures the reservas table and its indexes exist.  It is safe to
// run on every start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == DriverMySQL {
		stmts = mysqlSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if driver == DriverMySQL {
		return nil
	}
	return addTimestampColumns(ctx, db)
}

// legacyTimestamp fills timestamp columns added to an existing table.
// SQLite rejects a non-constant default in ADD COLUMN.
const legacyTimestamp = "1970-01-01 00:00:00"

// addTimestampColumns adds created_at and updated_at to a reservas table
// that lacks them and stamps the existing rows with the migration time.
func addTimestampColumns(ctx context.Context, db *sql.DB) error {
	cols, err := sqliteColumns(ctx, db, "reservas")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, col := range []string{"created_at", "updated_at"} {
		if cols[col] {
			continue
		}
		stmts := []string{
			`ALTER TABLE reservas ADD COLUMN ` + col + ` DATETIME NOT NULL DEFAULT '` + legacyTimestamp + `'`,
			`UPDATE reservas SET ` + col + ` = CURRENT_TIMESTAMP WHERE ` + col + ` = '` + legacyTimestamp + `'`,
		}
		for _, s := range stmts {
			if _, err := db.ExecContext(ctx, s); err != nil {
				return fmt.Errorf("migrate: add %s: %w", col, err)
			}
		}
	}
	return nil
}

func sqliteColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
