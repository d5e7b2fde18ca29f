package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/iliyamo/school-booking/internal/model"
)

// ReservationRepo provides CRUD and aggregate queries over the reservas
// table.  Queries use `?` placeholders so the same statements run on SQLite
// and MySQL.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for health checks.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, nombre, apellido, dni, cargo, fecha, horario, espacio, duracion, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var res model.Reservation
	err := s.Scan(&res.ID, &res.FirstName, &res.LastName, &res.DNI, &res.Role,
		&res.Date, &res.Time, &res.Space, &res.DurationMinutes, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

// Exists reports whether a reservation already holds the slot.  When
// excludeID is non-nil that reservation is ignored, which lets an update
// keep its own slot.
func (r *ReservationRepo) Exists(ctx context.Context, slot model.Slot, excludeID *uint64) (bool, error) {
	q := `SELECT COUNT(*) FROM reservas WHERE fecha = ? AND horario = ? AND espacio = ?`
	args := []any{slot.Date, slot.Time, slot.Space}
	if excludeID != nil {
		q += ` AND id <> ?`
		args = append(args, *excludeID)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, errors.Wrap(err, "count reservations in slot")
	}
	return n > 0, nil
}

// Create inserts res and populates its generated ID and timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	// Timestamps are set explicitly: tables upgraded from older files carry
	// a constant column default.
	const q = `INSERT INTO reservas (nombre, apellido, dni, cargo, fecha, horario, espacio, duracion, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	result, err := r.db.ExecContext(ctx, q, res.FirstName, res.LastName, res.DNI, res.Role,
		res.Date, res.Time, res.Space, res.DurationMinutes)
	if err != nil {
		return errors.Wrap(err, "insert reservation")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert reservation: last insert id")
	}
	// Query back the full row to populate timestamps and defaults
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// Update overwrites every field of the reservation identified by res.ID.
// ErrNotFound is returned when no such reservation exists.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservas
	           SET nombre = ?, apellido = ?, dni = ?, cargo = ?, fecha = ?, horario = ?, espacio = ?, duracion = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, res.FirstName, res.LastName, res.DNI, res.Role,
		res.Date, res.Time, res.Space, res.DurationMinutes, res.ID)
	if err != nil {
		return errors.Wrapf(err, "update reservation %d", res.ID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update reservation %d: rows affected", res.ID)
	}
	if n == 0 {
		return ErrNotFound
	}
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// Delete removes the reservation with the given id.  Deleting an id that
// does not exist is not an error.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reservas WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "delete reservation %d", id)
	}
	return nil
}

// GetByID loads a single reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservas WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get reservation %d", id)
	}
	return &res, nil
}

// List returns every reservation, newest first.  An empty table yields an
// empty, non-nil slice.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservas ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list reservations")
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan reservation")
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list reservations")
	}
	return out, nil
}

// Count returns the number of stored reservations.
func (r *ReservationRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservas`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count reservations")
	}
	return n, nil
}

// CountByDate returns the number of reservations on date (YYYY-MM-DD).
func (r *ReservationRepo) CountByDate(ctx context.Context, date string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservas WHERE fecha = ?`, date).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count reservations on %s", date)
	}
	return n, nil
}

// Conflicts lists every slot held by more than one reservation.  Such rows
// only appear when two writers raced past the duplicate check or when data
// was loaded from outside the application.
func (r *ReservationRepo) Conflicts(ctx context.Context) ([]model.Conflict, error) {
	const q = `SELECT fecha, horario, espacio, COUNT(*) AS cantidad
	           FROM reservas
	           GROUP BY fecha, horario, espacio
	           HAVING COUNT(*) > 1
	           ORDER BY fecha, horario, espacio`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "detect conflicts")
	}
	defer rows.Close()
	out := make([]model.Conflict, 0)
	for rows.Next() {
		var c model.Conflict
		if err := rows.Scan(&c.Date, &c.Time, &c.Space, &c.Count); err != nil {
			return nil, errors.Wrap(err, "scan conflict")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "detect conflicts")
	}
	return out, nil
}
