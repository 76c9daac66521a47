package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uprez/upgrade-engine/internal/middleware"
	"github.com/uprez/upgrade-engine/internal/repository"
	"github.com/uprez/upgrade-engine/internal/service"
)

// OfferHandler exposes the offer lifecycle over HTTP.  All endpoints
// are scoped by the session id the SessionScope middleware extracted;
// an empty session operates on the shared global data set.
type OfferHandler struct {
	Service *service.OfferService
}

// NewOfferHandler constructs an OfferHandler.  The service must be
// non-nil.
func NewOfferHandler(svc *service.OfferService) *OfferHandler {
	if svc == nil {
		panic("nil service passed to NewOfferHandler")
	}
	return &OfferHandler{Service: svc}
}

// Generate handles POST /v1/offers/generate.  The body must carry a
// "booking_id".  A booking with no viable upgrade candidate yields a
// 200 response with a null offer_id, which is a normal outcome.  A
// booking that already has an offer yields 409.
func (h *OfferHandler) Generate(c echo.Context) error {
	var body struct {
		BookingID string `json:"booking_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	ctx := c.Request().Context()
	offer, err := h.Service.GenerateOffer(ctx, body.BookingID, middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrPropertyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booked property not found"})
		case errors.Is(err, repository.ErrOfferExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "an offer already exists for this booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate offer"})
	}
	if offer == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"offer_id": nil,
			"message":  "no viable upgrade available for this booking",
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"offer_id": offer.ID,
		"offer":    offer,
	})
}

// List handles GET /v1/offers.  It returns every offer visible to the
// session, newest first, each with its lazily computed status.
func (h *OfferHandler) List(c echo.Context) error {
	offers, err := h.Service.ListOffers(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load offers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": offers})
}

// Get handles GET /v1/offers/:id.
func (h *OfferHandler) Get(c echo.Context) error {
	offer, err := h.Service.GetOffer(c.Request().Context(), c.Param("id"), middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch offer"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": offer})
}

// Accept handles POST /v1/offers/:id/accept.  The body must carry the
// "prop_id" of the chosen option.  Acceptance is at-most-once: a second
// accept of the same offer returns 409, an accept past the deadline
// returns 410, and of two concurrent accepts exactly one wins.
func (h *OfferHandler) Accept(c echo.Context) error {
	var body struct {
		PropID string `json:"prop_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PropID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prop_id is required"})
	}

	offer, err := h.Service.AcceptOffer(c.Request().Context(), c.Param("id"), body.PropID, middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOfferNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		case errors.Is(err, repository.ErrOptionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property is not part of this offer"})
		case errors.Is(err, repository.ErrOfferAccepted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offer already accepted"})
		case errors.Is(err, repository.ErrOfferExpired):
			return c.JSON(http.StatusGone, echo.Map{"error": "offer has expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to accept offer"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": offer})
}

// Expire handles POST /v1/offers/:id/expire.  It force-expires an
// active offer ahead of its deadline.  Expiring an already terminal
// offer returns 409.
func (h *OfferHandler) Expire(c echo.Context) error {
	err := h.Service.ExpireOffer(c.Request().Context(), c.Param("id"), middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOfferNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offer is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to expire offer"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "offer expired"})
}

// GenerateOptionCopy handles POST /v1/offers/:id/generate-option.  The
// body must carry the "prop_id" of the option to enrich with fresh
// copy.  When no copywriting backend is configured the endpoint
// responds 503 and the option keeps its fallback text.
func (h *OfferHandler) GenerateOptionCopy(c echo.Context) error {
	var body struct {
		PropID string `json:"prop_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PropID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prop_id is required"})
	}

	copyBlock, err := h.Service.GenerateOptionCopy(c.Request().Context(), c.Param("id"), body.PropID, middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOfferNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		case errors.Is(err, repository.ErrOptionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property is not part of this offer"})
		case errors.Is(err, service.ErrCopyUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "copywriting service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate copy"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ai_copy": copyBlock})
}
