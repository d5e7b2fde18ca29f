package view

import "github.com/iliyamo/school-booking/internal/model"

// IndexData feeds the dashboard.
type IndexData struct {
	Admin        bool
	Flash        string
	Summary      model.Summary
	Reservations []model.Reservation
	Roles        []string
	Spaces       []string
}

// EditData feeds the edit form.
type EditData struct {
	Reservation model.Reservation
	Roles       []string
	Spaces      []string
}

// LoginData feeds the login form.  Message is shown above the form.
type LoginData struct {
	User    string
	Message string
}
