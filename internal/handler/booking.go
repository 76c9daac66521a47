package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uprez/upgrade-engine/internal/middleware"
	"github.com/uprez/upgrade-engine/internal/repository"
)

// BookingHandler serves read access to bookings.  Bookings are created
// by seeding or by the demo flow, never through this API, so the
// surface is list and fetch only.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *repository.BookingRepo) *BookingHandler {
	if bookings == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

// List handles GET /v1/bookings.  It returns the bookings visible to
// the session: the session's own rows plus the shared global rows.
func (h *BookingHandler) List(c echo.Context) error {
	items, err := h.Bookings.List(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	item, err := h.Bookings.GetByID(c.Request().Context(), c.Param("id"), middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}
