package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/school-booking/internal/database"
	"github.com/iliyamo/school-booking/internal/model"
	"github.com/iliyamo/school-booking/internal/repository"
	"github.com/iliyamo/school-booking/internal/service"
)

type ServiceSuite struct {
	suite.Suite
	svc *service.ReservationService
}

func (s *ServiceSuite) SetupTest() {
	db, err := database.OpenSQLite(filepath.Join(s.T().TempDir(), "reservas.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(database.Migrate(context.Background(), db, database.DriverSQLite))
	s.svc = service.NewReservationService(repository.NewReservationRepo(db), service.Choices{})
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func ana() service.Input {
	return service.Input{
		FirstName: "Ana", LastName: "Gomez", DNI: "12345678", Role: "Student",
		Date: "2025-03-10", Time: "09:00", Space: "Library", DurationMinutes: 60,
	}
}

func (s *ServiceSuite) TestDuplicateSlotIsRejected() {
	ctx := s.T().Context()

	first, ok, err := s.svc.Create(ctx, ana())
	s.Require().NoError(err)
	s.True(ok)
	s.NotZero(first.ID)

	_, ok, err = s.svc.Create(ctx, ana())
	s.Require().NoError(err)
	s.False(ok)

	sum, err := s.svc.Summary(ctx, "2025-03-10")
	s.Require().NoError(err)
	s.Equal(1, sum.Total)
	s.Equal(1, sum.Today)
	s.Empty(sum.Conflicts)
}

func (s *ServiceSuite) TestCreateThenGetRoundTrip() {
	ctx := s.T().Context()

	created, ok, err := s.svc.Create(ctx, ana())
	s.Require().NoError(err)
	s.Require().True(ok)

	got, err := s.svc.Get(ctx, created.ID)
	s.Require().NoError(err)

	want := model.Reservation{
		ID: created.ID, FirstName: "Ana", LastName: "Gomez", DNI: "12345678", Role: "Student",
		Date: "2025-03-10", Time: "09:00", Space: "Library", DurationMinutes: 60,
	}
	if diff := cmp.Diff(want, *got, cmpopts.IgnoreFields(model.Reservation{}, "CreatedAt", "UpdatedAt")); diff != "" {
		s.T().Errorf("reservation mismatch (-want +got):\n%s", diff)
	}
}

func (s *ServiceSuite) TestCreateSanitizes() {
	in := ana()
	in.FirstName = "  <b>Ana</b> "
	in.DNI = "12.345.678"

	res, ok, err := s.svc.Create(s.T().Context(), in)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal("Ana", res.FirstName)
	s.Equal("12345678", res.DNI)
}

func (s *ServiceSuite) TestUpdateKeepsOwnSlot() {
	ctx := s.T().Context()
	created, _, err := s.svc.Create(ctx, ana())
	s.Require().NoError(err)

	in := ana()
	in.DurationMinutes = 90
	updated, ok, err := s.svc.Update(ctx, created.ID, in)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(90, updated.DurationMinutes)
}

func (s *ServiceSuite) TestUpdateIntoTakenSlotIsConflict() {
	ctx := s.T().Context()
	_, _, err := s.svc.Create(ctx, ana())
	s.Require().NoError(err)

	other := ana()
	other.Time = "10:00"
	second, ok, err := s.svc.Create(ctx, other)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, ok, err = s.svc.Update(ctx, second.ID, ana())
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.svc.Get(ctx, second.ID)
	s.Require().NoError(err)
	s.Equal("10:00", got.Time)
}

func (s *ServiceSuite) TestUpdateUnknownID() {
	_, _, err := s.svc.Update(s.T().Context(), 777, ana())
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *ServiceSuite) TestValidationStopsWrites() {
	ctx := s.T().Context()

	in := ana()
	in.DNI = "123"
	_, ok, err := s.svc.Create(ctx, in)
	s.False(ok)
	s.Require().Error(err)
	s.True(service.IsValidationError(err))
	s.Contains(err.Error(), "DNI inválido")

	in = ana()
	in.DurationMinutes = 5
	_, _, err = s.svc.Create(ctx, in)
	s.True(service.IsValidationError(err))

	list, err := s.svc.List(ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ServiceSuite) TestDeleteMissingIsNotAnError() {
	s.NoError(s.svc.Delete(s.T().Context(), 9999))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*service.Input)
		field  string
	}{
		{"short dni", func(in *service.Input) { in.DNI = "123456" }, "dni"},
		{"long dni", func(in *service.Input) { in.DNI = "123456789" }, "dni"},
		{"duration low", func(in *service.Input) { in.DurationMinutes = 9 }, "duracion"},
		{"duration high", func(in *service.Input) { in.DurationMinutes = 481 }, "duracion"},
		{"bad date", func(in *service.Input) { in.Date = "10/03/2025" }, "fecha"},
		{"bad time", func(in *service.Input) { in.Time = "9am" }, "horario"},
		{"no first name", func(in *service.Input) { in.FirstName = "" }, "nombre"},
		{"no space", func(in *service.Input) { in.Space = "" }, "espacio"},
		{"long first name", func(in *service.Input) { in.FirstName = strings.Repeat("a", 121) }, "nombre"},
		{"long last name", func(in *service.Input) { in.LastName = strings.Repeat("ñ", 121) }, "apellido"},
		{"long role", func(in *service.Input) { in.Role = strings.Repeat("r", 61) }, "cargo"},
		{"long space", func(in *service.Input) { in.Space = strings.Repeat("s", 61) }, "espacio"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ana()
			tc.mutate(&in)
			err := service.Validate(service.Sanitize(in), service.Choices{})
			require.Error(t, err)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	t.Run("bounds accepted", func(t *testing.T) {
		for _, d := range []int{10, 480} {
			in := ana()
			in.DurationMinutes = d
			assert.NoError(t, service.Validate(in, service.Choices{}))
		}
		in := ana()
		in.DNI = "1234567"
		assert.NoError(t, service.Validate(in, service.Choices{}))

		in = ana()
		in.FirstName = strings.Repeat("ñ", 120)
		in.Space = strings.Repeat("s", 60)
		assert.NoError(t, service.Validate(in, service.Choices{}), "limits count characters, not bytes")
	})
}

func TestValidateChoices(t *testing.T) {
	choices := service.Choices{Roles: []string{"Alumno", "Profesor"}, Spaces: []string{"Aula 1", "Biblioteca"}}

	in := ana()
	in.Role, in.Space = "Profesor", "Biblioteca"
	assert.NoError(t, service.Validate(in, choices))

	in.Role, in.Space = "Conserje", "Patio"
	err := service.Validate(in, choices)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Cargo inválido.", ve.Fields["cargo"])
	assert.Equal(t, "Espacio inválido.", ve.Fields["espacio"])
}

func TestNewReservationServicePanicsOnNilStore(t *testing.T) {
	assert.Panics(t, func() { service.NewReservationService(nil, service.Choices{}) })
}
