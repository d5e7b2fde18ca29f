package model

import "time"

// Reservation records one booking of a school space.
//
// Fields:
//  ID              – primary key identifier.
//  FirstName       – reservas.nombre.
//  LastName        – reservas.apellido.
//  DNI             – national ID, 7 or 8 digits.
//  Role            – reservas.cargo (Alumno, Profesor, ...).
//  Date            – calendar day as YYYY-MM-DD.
//  Time            – start time as 24h HH:MM.
//  Space           – reservas.espacio (Aula 1, Biblioteca, ...).
//  DurationMinutes – length of the booking, 10 to 480.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	DNI             string    `json:"dni"`
	Role            string    `json:"role"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Space           string    `json:"space"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Slot is the (date, time, space) triple that must be unique per reservation.
type Slot struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Space string `json:"space"`
}

// Slot returns the booking slot occupied by r.
func (r Reservation) Slot() Slot {
	return Slot{Date: r.Date, Time: r.Time, Space: r.Space}
}

// Conflict is a slot held by more than one reservation.
type Conflict struct {
	Slot
	Count int `json:"count"`
}

// Summary holds the dashboard aggregates.
type Summary struct {
	Total     int
	TodayDate string
	Today     int
	Conflicts []Conflict
}
