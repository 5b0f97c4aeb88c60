// Package router registers HTTP routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tasting-service/internal/handler"
	"github.com/iliyamo/tasting-service/internal/relay"
)

// RegisterRoutes registers the health check and the operator API.
func RegisterRoutes(e *echo.Echo, h *handler.ServiceHandler) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.GET("/state", h.GetState)             // full floor, same shape as a SNAPSHOT
	v1.GET("/replication", h.GetReplication) // role and socket status
	v1.GET("/menus", h.ListMenus)
	v1.GET("/menus/:id", h.GetMenu) // reads through to the menu database when configured
	v1.POST("/events", h.PostEvent) // any named op: {"name": ..., "args": {...}}

	// Table shortcuts; each one dispatches a single op.
	tables := v1.Group("/tables/:id")
	tables.POST("/fire", h.Fire)       // FIRE_NEXT: fire or refire
	tables.POST("/pause", h.Pause)     // TOGGLE_PAUSE, body {"paused": bool}
	tables.POST("/approve", h.Approve) // APPROVE_TABLE
	tables.POST("/courses/:courseId/done", h.MarkDone)

	v1.GET("/reservations/:id/draft", h.GetDraft) // preview only; never mutates the table
}

// RegisterRelay mounts the relay's websocket endpoint at /ws.
func RegisterRelay(e *echo.Echo, hub *relay.Hub) {
	e.GET("/ws", hub.ServeWS)
}
