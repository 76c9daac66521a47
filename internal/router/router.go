package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/uprez/upgrade-engine/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that carry no domain dependencies on
// the provided Echo instance.  Currently it exposes only a health
// check, which load balancers and monitoring systems can use to verify
// that the service is up and running.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterOffers registers the offer lifecycle endpoints.  All of them
// read the session scope from the X-Session-Id header via the
// SessionScope middleware, which the caller is expected to have
// installed globally.
func RegisterOffers(e *echo.Echo, h *handler.OfferHandler) {
	g := e.Group("/v1/offers")
	// Generate an offer for a booking.  Returns 201 with the offer, or
	// 200 with a null offer_id when no candidate survives the
	// guardrails.
	g.POST("/generate", h.Generate)
	// List all offers visible to the session, newest first.
	g.GET("", h.List)
	// Fetch a single offer; the status reflects lazy expiry.
	g.GET("/:id", h.Get)
	// Accept one option of an offer.  At most one accept ever wins.
	g.POST("/:id/accept", h.Accept)
	// Force-expire an active offer ahead of its deadline.
	g.POST("/:id/expire", h.Expire)
	// Regenerate marketing copy for a single option of the offer.
	g.POST("/:id/generate-option", h.GenerateOptionCopy)
}

// RegisterCatalog registers read-only access to bookings and the
// property portfolio.
func RegisterCatalog(e *echo.Echo, b *handler.BookingHandler, p *handler.PropertyHandler) {
	e.GET("/v1/bookings", b.List)
	e.GET("/v1/bookings/:id", b.Get)
	e.GET("/v1/properties", p.List)
	e.GET("/v1/properties/:id", p.Get)
}

// RegisterHosts registers the host settings endpoints.
func RegisterHosts(e *echo.Echo, h *handler.HostSettingsHandler) {
	g := e.Group("/v1/hosts/:id/settings")
	g.GET("", h.Get)
	g.PATCH("", h.Patch)
	g.POST("/reset", h.Reset)
}

// RegisterDemo registers the demo trigger endpoints that stand in for
// the production scheduler.
func RegisterDemo(e *echo.Echo, d *handler.DemoHandler) {
	e.GET("/v1/demo/ready-bookings", d.ReadyBookings)
	e.POST("/v1/demo/trigger", d.Trigger)
}
