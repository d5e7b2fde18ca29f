package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-booking/internal/middleware"
	"github.com/iliyamo/school-booking/internal/model"
	"github.com/iliyamo/school-booking/internal/queue"
	"github.com/iliyamo/school-booking/internal/service"
	"github.com/iliyamo/school-booking/internal/session"
	"github.com/iliyamo/school-booking/internal/view"
)

// Values of the accion form field.
const (
	ActionInsert = "insertar"
	ActionUpdate = "actualizar"
	ActionDelete = "eliminar"
)

// Flash messages shown on the dashboard after an action.
const (
	MsgCreated         = "Reserva creada correctamente."
	MsgDuplicate       = "Ya existe una reserva con mismo espacio/fecha/horario."
	MsgUpdated         = "Reserva actualizada correctamente."
	MsgUpdateConflict  = "Conflicto: otra reserva ya ocupa ese espacio/fecha/hora."
	MsgDeleted         = "Reserva eliminada."
	MsgNotFound        = "Reserva no encontrada."
	MsgNoAction        = "Acción no especificada"
	MsgInvalidAction   = "Acción inválida"
	MsgAdminOnly       = "Acción restringida a administrador"
	MsgStorageFailure  = "No se pudo completar la operación. Intente nuevamente más tarde."
	msgCreateErrPrefix = "Error al crear: "
	msgUpdateErrPrefix = "Error al actualizar: "
)

// ReservationHandler serves the dashboard, the action controller and the
// edit form.
type ReservationHandler struct {
	Service  *service.ReservationService
	Sessions *session.Manager
	Events   queue.Publisher
	Logger   *slog.Logger
	Roles    []string
	Spaces   []string
	// Now returns the current time in the school's zone; it decides which
	// day the dashboard counts as today.
	Now func() time.Time
}

// NewReservationHandler panics if svc or sessions is nil.  A nil publisher
// disables events and a nil logger discards logs.
func NewReservationHandler(svc *service.ReservationService, sessions *session.Manager, events queue.Publisher,
	logger *slog.Logger, roles, spaces []string, now func() time.Time) *ReservationHandler {
	if svc == nil || sessions == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationHandler{Service: svc, Sessions: sessions, Events: events, Logger: logger,
		Roles: roles, Spaces: spaces, Now: now}
}

// Home handles GET /.  It shows the pending flash message, the summary
// panel, every reservation and the creation form.
func (h *ReservationHandler) Home(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	s := middleware.SessionFrom(c)
	flash, err := h.Sessions.PopFlash(ctx, c.Response(), s)
	if err != nil {
		h.Logger.Error("pop flash failed", "err", err)
	}
	data := view.IndexData{
		Admin:  s.IsAdmin(),
		Flash:  flash,
		Roles:  h.Roles,
		Spaces: h.Spaces,
	}

	today := h.Now().Format("2006-01-02")
	sum, err := h.Service.Summary(ctx, today)
	if err == nil {
		data.Reservations, err = h.Service.List(ctx)
	}
	if err != nil {
		h.Logger.Error("load dashboard failed", "err", err)
		data.Flash = MsgStorageFailure
		data.Summary = model.Summary{TodayDate: today}
		data.Reservations = nil
		return c.Render(http.StatusServiceUnavailable, view.PageIndex, data)
	}
	data.Summary = sum
	return c.Render(http.StatusOK, view.PageIndex, data)
}

// Action handles GET|POST /admin.  Creation is open to everyone; update
// and delete need the administrator session.  accion may come from the
// query string, but writes only run on POST and read their fields from
// the body.  Every outcome is reported through the flash message on the
// dashboard.
func (h *ReservationHandler) Action(c echo.Context) error {
	accion := c.FormValue("accion")
	switch accion {
	case "":
		return h.flash(c, MsgNoAction)
	case ActionInsert:
		if c.Request().Method != http.MethodPost {
			return h.flash(c, MsgInvalidAction)
		}
		return h.insert(c)
	case ActionUpdate, ActionDelete:
		if !middleware.SessionFrom(c).IsAdmin() {
			return h.flash(c, MsgAdminOnly)
		}
		if c.Request().Method != http.MethodPost {
			h.Logger.Warn("write action refused on non-POST request", "action", accion, "method", c.Request().Method)
			return h.flash(c, MsgInvalidAction)
		}
		if accion == ActionUpdate {
			return h.update(c)
		}
		return h.delete(c)
	default:
		return h.flash(c, MsgInvalidAction)
	}
}

func (h *ReservationHandler) insert(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, ok, err := h.Service.Create(ctx, formInput(c))
	switch {
	case service.IsValidationError(err):
		h.Logger.Debug("reservation rejected", "err", err)
		return h.flash(c, msgCreateErrPrefix+err.Error())
	case err != nil:
		h.Logger.Error("create reservation failed", "err", err)
		return h.flash(c, MsgStorageFailure)
	case !ok:
		h.Logger.Info("reservation slot taken", "action", ActionInsert)
		return h.flash(c, MsgDuplicate)
	}
	h.publish(c, queue.ActionCreated, res)
	return h.flash(c, MsgCreated)
}

func (h *ReservationHandler) update(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := parseID(postValue(c, "id"))
	res, ok, err := h.Service.Update(ctx, id, formInput(c))
	switch {
	case service.IsValidationError(err):
		h.Logger.Debug("reservation update rejected", "id", id, "err", err)
		return h.flash(c, msgUpdateErrPrefix+err.Error())
	case errors.Is(err, service.ErrNotFound):
		return h.flash(c, MsgNotFound)
	case err != nil:
		h.Logger.Error("update reservation failed", "id", id, "err", err)
		return h.flash(c, MsgStorageFailure)
	case !ok:
		h.Logger.Info("reservation slot taken", "action", ActionUpdate, "id", id)
		return h.flash(c, MsgUpdateConflict)
	}
	h.publish(c, queue.ActionUpdated, res)
	return h.flash(c, MsgUpdated)
}

func (h *ReservationHandler) delete(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := parseID(postValue(c, "id"))
	if err := h.Service.Delete(ctx, id); err != nil {
		h.Logger.Error("delete reservation failed", "id", id, "err", err)
		return h.flash(c, MsgStorageFailure)
	}
	if id != 0 {
		h.publish(c, queue.ActionDeleted, model.Reservation{ID: id})
	}
	return h.flash(c, MsgDeleted)
}

// Edit handles GET /editar?id=.  The route is admin-only; an unknown id
// sends the administrator back to the dashboard.
func (h *ReservationHandler) Edit(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id := parseID(c.QueryParam("id"))
	res, err := h.Service.Get(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return h.flash(c, MsgNotFound)
	}
	if err != nil {
		h.Logger.Error("load reservation failed", "id", id, "err", err)
		return h.flash(c, MsgStorageFailure)
	}
	return c.Render(http.StatusOK, view.PageEdit, view.EditData{Reservation: *res, Roles: h.Roles, Spaces: h.Spaces})
}

func (h *ReservationHandler) flash(c echo.Context, msg string) error {
	return redirectWithFlash(c, h.Sessions, h.Logger, msg)
}

// publish emits a reservation event.  The write already happened, so a
// broker failure is only logged.
func (h *ReservationHandler) publish(c echo.Context, action string, res model.Reservation) {
	ev := queue.NewReservationEvent(action, res, time.Now().UTC())
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		h.Logger.Warn("publish reservation event failed", "action", action, "id", res.ID, "err", err)
	}
}
