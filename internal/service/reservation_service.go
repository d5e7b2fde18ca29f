// Package service holds the reservation rules: input sanitation, field
// validation and the duplicate-slot policy applied before every write.
package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/iliyamo/school-booking/internal/model"
	"github.com/iliyamo/school-booking/internal/repository"
	"github.com/iliyamo/school-booking/internal/validator"
)

// Duration bounds in minutes, inclusive.
const (
	MinDurationMinutes = 10
	MaxDurationMinutes = 480
)

// Length limits in characters, matching the MySQL column sizes.
const (
	MaxNameLength  = 120
	MaxLabelLength = 60
)

// Choices are the accepted roles and spaces.  An empty list accepts any
// non-empty value.
type Choices struct {
	Roles  []string
	Spaces []string
}

// ErrNotFound is returned when the addressed reservation does not exist.
var ErrNotFound = repository.ErrNotFound

// ReservationStore is the persistence the service needs.
// *repository.ReservationRepo satisfies it.
type ReservationStore interface {
	Exists(ctx context.Context, slot model.Slot, excludeID *uint64) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	Count(ctx context.Context) (int, error)
	CountByDate(ctx context.Context, date string) (int, error)
	Conflicts(ctx context.Context) ([]model.Conflict, error)
}

// Input carries the raw form values of a reservation.
type Input struct {
	FirstName       string
	LastName        string
	DNI             string
	Role            string
	Date            string
	Time            string
	Space           string
	DurationMinutes int
}

// ValidationError lists the fields that failed validation.  No write is
// attempted when it is returned.
type ValidationError struct {
	Fields map[string]string
	order  []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.Fields[f])
	}
	return strings.Join(msgs, " ")
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var markupRX = regexp.MustCompile(`<[^>]*>`)

func clean(s string) string {
	return strings.TrimSpace(markupRX.ReplaceAllString(s, ""))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Sanitize trims every text field, strips markup from them and keeps only
// the digits of the DNI.
func Sanitize(in Input) Input {
	return Input{
		FirstName:       clean(in.FirstName),
		LastName:        clean(in.LastName),
		DNI:             digitsOnly(in.DNI),
		Role:            clean(in.Role),
		Date:            clean(in.Date),
		Time:            clean(in.Time),
		Space:           clean(in.Space),
		DurationMinutes: in.DurationMinutes,
	}
}

// Validate checks an already sanitized input against the field rules and
// choices.  It returns a *ValidationError or nil.
func Validate(in Input, choices Choices) error {
	v := validator.New()
	v.Check(validator.Matches(in.DNI, validator.DNIRX), "dni", "DNI inválido. Debe tener 7-8 dígitos.")
	v.Check(validator.Between(in.DurationMinutes, MinDurationMinutes, MaxDurationMinutes),
		"duracion", "Duración inválida (rango: 10 a 480 minutos).")
	v.Check(validator.Matches(in.Date, validator.DateRX), "fecha", "Formato de fecha inválido.")
	v.Check(validator.Matches(in.Time, validator.TimeRX), "horario", "Formato de horario inválido.")
	v.Check(in.FirstName != "", "nombre", "El nombre es obligatorio.")
	v.Check(in.LastName != "", "apellido", "El apellido es obligatorio.")
	v.Check(in.Role != "", "cargo", "El cargo es obligatorio.")
	v.Check(in.Space != "", "espacio", "El espacio es obligatorio.")
	v.Check(utf8.RuneCountInString(in.FirstName) <= MaxNameLength, "nombre", "El nombre es demasiado largo (máximo 120 caracteres).")
	v.Check(utf8.RuneCountInString(in.LastName) <= MaxNameLength, "apellido", "El apellido es demasiado largo (máximo 120 caracteres).")
	v.Check(utf8.RuneCountInString(in.Role) <= MaxLabelLength, "cargo", "El cargo es demasiado largo (máximo 60 caracteres).")
	v.Check(utf8.RuneCountInString(in.Space) <= MaxLabelLength, "espacio", "El espacio es demasiado largo (máximo 60 caracteres).")
	if len(choices.Roles) > 0 {
		v.Check(validator.In(in.Role, choices.Roles...), "cargo", "Cargo inválido.")
	}
	if len(choices.Spaces) > 0 {
		v.Check(validator.In(in.Space, choices.Spaces...), "espacio", "Espacio inválido.")
	}
	if v.Valid() {
		return nil
	}
	return &ValidationError{Fields: v.Errors, order: v.Order}
}

func (in Input) reservation(id uint64) model.Reservation {
	return model.Reservation{
		ID:              id,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		DNI:             in.DNI,
		Role:            in.Role,
		Date:            in.Date,
		Time:            in.Time,
		Space:           in.Space,
		DurationMinutes: in.DurationMinutes,
	}
}

// ReservationService applies the reservation rules on top of a store.
type ReservationService struct {
	store   ReservationStore
	choices Choices
}

// NewReservationService panics when store is nil.
func NewReservationService(store ReservationStore, choices Choices) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{store: store, choices: choices}
}

// Create sanitizes and validates in, then inserts it unless its slot is
// already taken.  ok is false, with a nil error, when the slot is taken.
//
// The duplicate check and the insert are separate statements, so two
// concurrent creates for the same slot can both succeed.  Conflicts then
// shows the doubled slot.
func (s *ReservationService) Create(ctx context.Context, in Input) (res model.Reservation, ok bool, err error) {
	in = Sanitize(in)
	if err := Validate(in, s.choices); err != nil {
		return model.Reservation{}, false, err
	}
	res = in.reservation(0)
	taken, err := s.store.Exists(ctx, res.Slot(), nil)
	if err != nil {
		return model.Reservation{}, false, err
	}
	if taken {
		return model.Reservation{}, false, nil
	}
	if err := s.store.Create(ctx, &res); err != nil {
		return model.Reservation{}, false, err
	}
	return res, true, nil
}

// Update replaces reservation id with in.  The slot may be the one the
// reservation already holds; ok is false only when another reservation
// holds it.  ErrNotFound is returned for an unknown id.
func (s *ReservationService) Update(ctx context.Context, id uint64, in Input) (res model.Reservation, ok bool, err error) {
	in = Sanitize(in)
	if err := Validate(in, s.choices); err != nil {
		return model.Reservation{}, false, err
	}
	res = in.reservation(id)
	taken, err := s.store.Exists(ctx, res.Slot(), &id)
	if err != nil {
		return model.Reservation{}, false, err
	}
	if taken {
		return model.Reservation{}, false, nil
	}
	if err := s.store.Update(ctx, &res); err != nil {
		return model.Reservation{}, false, err
	}
	return res, true, nil
}

// Delete removes reservation id.  Unknown ids are not an error.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	return s.store.Delete(ctx, id)
}

// Get returns reservation id or ErrNotFound.
func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all reservations, newest first.
func (s *ReservationService) List(ctx context.Context) ([]model.Reservation, error) {
	return s.store.List(ctx)
}

// Summary collects the dashboard aggregates for the given day (YYYY-MM-DD).
func (s *ReservationService) Summary(ctx context.Context, today string) (model.Summary, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	onDay, err := s.store.CountByDate(ctx, today)
	if err != nil {
		return model.Summary{}, err
	}
	conflicts, err := s.store.Conflicts(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summary{Total: total, TodayDate: today, Today: onDay, Conflicts: conflicts}, nil
}
