package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-booking/internal/model"
)

func TestRenderIndexEscapesAndShowsAdminButtons(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	data := IndexData{
		Admin: true,
		Flash: "Reserva creada correctamente.",
		Summary: model.Summary{
			Total: 1, TodayDate: "2025-03-10", Today: 1,
			Conflicts: []model.Conflict{{Slot: model.Slot{Date: "2025-03-10", Time: "09:00", Space: "Aula 1"}, Count: 2}},
		},
		Reservations: []model.Reservation{{ID: 7, FirstName: "<script>", LastName: "Gomez", DNI: "12345678",
			Role: "Profesor", Date: "2025-03-10", Time: "09:00", Space: "Aula 1", DurationMinutes: 60}},
		Roles:  []string{"Profesor"},
		Spaces: []string{"Aula 1"},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageIndex, data, nil))

	out := buf.String()
	assert.Contains(t, out, "Reserva creada correctamente.")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<td><script>")
	assert.Contains(t, out, `value="eliminar"`)
	assert.Contains(t, out, "/logout")
	assert.Contains(t, out, "(2)")
}

func TestRenderIndexGuestHasNoAdminButtons(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageIndex, IndexData{}, nil))
	out := buf.String()
	assert.NotContains(t, out, `value="eliminar"`)
	assert.Contains(t, out, "Sin conflictos")
	assert.Contains(t, out, "/login")
}

func TestRenderEditSelectsCurrentValues(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	data := EditData{
		Reservation: model.Reservation{ID: 3, Role: "Directivo", Space: "Gimnasio", DurationMinutes: 45},
		Roles:       []string{"Alumno", "Directivo"},
		Spaces:      []string{"Aula 1", "Gimnasio"},
	}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageEdit, data, nil))
	out := buf.String()
	assert.Contains(t, out, `<option value="Directivo" selected>`)
	assert.Contains(t, out, `<option value="Gimnasio" selected>`)
	assert.Contains(t, out, `<option value="Alumno">`)
	assert.Contains(t, out, `value="actualizar"`)
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", nil, nil))
}
