// Package handler exposes the operator HTTP API.  Every mutation goes
// through the replication node, so a request against a CLIENT is forwarded
// to the authority exactly like a tap on a device would be.
package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/replication"
	"github.com/iliyamo/tasting-service/internal/repository"
	"github.com/iliyamo/tasting-service/internal/socket"
)

// Node is the replication surface the API needs.
type Node interface {
	Dispatch(op event.Op) replication.Outcome
	Role() replication.Role
	Status() socket.Status
}

// StateReader exposes read-only views of the store.
type StateReader interface {
	State() event.State
	Draft(reservationID string) (model.TableSetup, bool)
}

// MenuSource looks up a single menu; repository.MenuRepo reads through to
// the menu database.
type MenuSource interface {
	Get(ctx context.Context, id string) (model.Menu, error)
}

// ServiceHandler serves the floor state and accepts operator actions.
type ServiceHandler struct {
	node   Node
	store  StateReader
	menus  menu.Catalog // loaded at startup, also used for composition
	source MenuSource   // single-menu lookups
}

// NewServiceHandler constructs a ServiceHandler.  A nil source answers
// single-menu lookups from menus.
func NewServiceHandler(node Node, store StateReader, menus menu.Catalog, source MenuSource) *ServiceHandler {
	if source == nil {
		source = repository.StaticMenus{Catalog: menus}
	}
	return &ServiceHandler{node: node, store: store, menus: menus, source: source}
}

// GetState returns the current tables and reservations.
func (h *ServiceHandler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.State())
}

// GetReplication reports the node's role and socket status.
func (h *ServiceHandler) GetReplication(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"role":   h.node.Role(),
		"status": h.node.Status(),
	})
}

// PostEvent accepts any named op in wire form: {"name": ..., "args": {...}}.
// The answer is 202 because on a CLIENT the outcome is only known once the
// next snapshot arrives.
func (h *ServiceHandler) PostEvent(c echo.Context) error {
	var ev event.Event
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	op, err := event.Decode(ev)
	if err != nil {
		if errors.Is(err, event.ErrUnknownOp) || errors.Is(err, event.ErrMalformedEvent) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return err
	}
	return h.dispatch(c, op)
}

// Fire fires the next course, or refires the last one while paused.
func (h *ServiceHandler) Fire(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	return h.dispatch(c, event.FireNext{TableID: id})
}

// Pause sets the pause flag to the value in the body.
func (h *ServiceHandler) Pause(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var body struct {
		Paused *bool `json:"paused"`
	}
	if err := c.Bind(&body); err != nil || body.Paused == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paused is required"})
	}
	return h.dispatch(c, event.TogglePause{TableID: id, Paused: *body.Paused})
}

// Approve signs off a table's setup.
func (h *ServiceHandler) Approve(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	return h.dispatch(c, event.ApproveTable{TableID: id})
}

// MarkDone marks a fired course as served.
func (h *ServiceHandler) MarkDone(c echo.Context) error {
	id, ok := tableID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	return h.dispatch(c, event.MarkDone{TableID: id, CourseID: c.Param("courseId")})
}

// GetDraft returns the assembled preview for a booking.
func (h *ServiceHandler) GetDraft(c echo.Context) error {
	setup, ok := h.store.Draft(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, setup)
}

// ListMenus returns the catalog ordered by id.
func (h *ServiceHandler) ListMenus(c echo.Context) error {
	out := make([]model.Menu, 0, len(h.menus))
	for _, m := range h.menus {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

// GetMenu returns one menu by id.
func (h *ServiceHandler) GetMenu(c echo.Context) error {
	m, err := h.source.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *ServiceHandler) dispatch(c echo.Context, op event.Op) error {
	return c.JSON(http.StatusAccepted, h.node.Dispatch(op))
}

func tableID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
