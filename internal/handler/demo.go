package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uprez/upgrade-engine/internal/middleware"
	"github.com/uprez/upgrade-engine/internal/service"
)

// DemoHandler drives the demo flow: inspect which bookings are ready
// for an offer and generate offers for all of them at once, the way a
// scheduled job would in production.
type DemoHandler struct {
	Service *service.OfferService
}

// NewDemoHandler constructs a DemoHandler.
func NewDemoHandler(svc *service.OfferService) *DemoHandler {
	if svc == nil {
		panic("nil service passed to NewDemoHandler")
	}
	return &DemoHandler{Service: svc}
}

// ReadyBookings handles GET /v1/demo/ready-bookings.  It lists the
// confirmed bookings in scope that have no offer yet.
func (h *DemoHandler) ReadyBookings(c echo.Context) error {
	items, err := h.Service.ReadyBookings(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Trigger handles POST /v1/demo/trigger.  It generates an offer for
// every ready booking and returns the ids of the offers created.
// Bookings with no viable candidates or a racing generation are
// skipped, not failed.
func (h *DemoHandler) Trigger(c echo.Context) error {
	ids, err := h.Service.TriggerReady(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to trigger offer generation"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"generated": len(ids),
		"offer_ids": ids,
	})
}
