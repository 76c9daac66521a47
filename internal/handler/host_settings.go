package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uprez/upgrade-engine/internal/middleware"
	"github.com/uprez/upgrade-engine/internal/repository"
)

// HostSettingsHandler exposes the per-host economic policy the engine
// prices against.  Reads resolve session-scoped rows first and fall
// back to the global row; writes always land in the caller's scope so
// a demo session can tune guardrails without affecting anyone else.
type HostSettingsHandler struct {
	Settings *repository.HostSettingsRepo
}

// NewHostSettingsHandler constructs a HostSettingsHandler.
func NewHostSettingsHandler(settings *repository.HostSettingsRepo) *HostSettingsHandler {
	if settings == nil {
		panic("nil repository passed to NewHostSettingsHandler")
	}
	return &HostSettingsHandler{Settings: settings}
}

// settingsPatch mirrors the mutable subset of HostSettings.  Pointer
// fields distinguish "absent" from a zero value so a PATCH only
// touches what the caller sent.  The monthly counters are deliberately
// not patchable; they are owned by the offer lifecycle.
type settingsPatch struct {
	HostName               *string   `json:"host_name"`
	PMCompanyName          *string   `json:"pm_company_name"`
	MinRevenueLiftPerNight *float64  `json:"min_revenue_lift_per_night"`
	MaxDiscountPct         *float64  `json:"max_discount_pct"`
	MinADRRatio            *float64  `json:"min_adr_ratio"`
	MaxADRMultiplier       *float64  `json:"max_adr_multiplier"`
	ChannelFeePct          *float64  `json:"channel_fee_pct"`
	ChangeFee              *float64  `json:"change_fee"`
	BlockedPropIDs         *[]string `json:"blocked_prop_ids"`
	OfferValidityHours     *int      `json:"offer_validity_hours"`
	UseAICopy              *bool     `json:"use_ai_copy"`
}

// Get handles GET /v1/hosts/:id/settings.  A host seen for the first
// time gets the seeded defaults, persisted so later reads and patches
// work against a real row.
func (h *HostSettingsHandler) Get(c echo.Context) error {
	settings, err := h.Settings.GetOrSeed(c.Request().Context(), c.Param("id"), middleware.SessionID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load settings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": settings})
}

// Patch handles PATCH /v1/hosts/:id/settings.  Only fields present in
// the body are updated.  The merged row is stored in the caller's
// session scope, shadowing the global row for that host.
func (h *HostSettingsHandler) Patch(c echo.Context) error {
	var body settingsPatch
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MaxDiscountPct != nil && (*body.MaxDiscountPct < 0 || *body.MaxDiscountPct > 1) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_discount_pct must be between 0 and 1"})
	}
	if body.ChannelFeePct != nil && (*body.ChannelFeePct < 0 || *body.ChannelFeePct > 1) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "channel_fee_pct must be between 0 and 1"})
	}
	if body.MinADRRatio != nil && *body.MinADRRatio < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_adr_ratio must not be negative"})
	}
	if body.MaxADRMultiplier != nil && *body.MaxADRMultiplier < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_adr_multiplier must not be negative"})
	}
	if body.MinRevenueLiftPerNight != nil && *body.MinRevenueLiftPerNight < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_revenue_lift_per_night must not be negative"})
	}
	if body.OfferValidityHours != nil && *body.OfferValidityHours < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "offer_validity_hours must be at least 1"})
	}

	ctx := c.Request().Context()
	sessionID := middleware.SessionID(c)
	settings, err := h.Settings.GetOrSeed(ctx, c.Param("id"), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load settings"})
	}

	if body.HostName != nil {
		settings.HostName = *body.HostName
	}
	if body.PMCompanyName != nil {
		settings.PMCompanyName = *body.PMCompanyName
	}
	if body.MinRevenueLiftPerNight != nil {
		settings.MinRevenueLiftPerNight = *body.MinRevenueLiftPerNight
	}
	if body.MaxDiscountPct != nil {
		settings.MaxDiscountPct = *body.MaxDiscountPct
	}
	if body.MinADRRatio != nil {
		settings.MinADRRatio = *body.MinADRRatio
	}
	if body.MaxADRMultiplier != nil {
		settings.MaxADRMultiplier = *body.MaxADRMultiplier
	}
	if body.ChannelFeePct != nil {
		settings.ChannelFeePct = *body.ChannelFeePct
	}
	if body.ChangeFee != nil {
		settings.ChangeFee = *body.ChangeFee
	}
	if body.BlockedPropIDs != nil {
		settings.BlockedPropIDs = *body.BlockedPropIDs
	}
	if body.OfferValidityHours != nil {
		settings.OfferValidityHours = *body.OfferValidityHours
	}
	if body.UseAICopy != nil {
		settings.UseAICopy = *body.UseAICopy
	}

	// The patched row always lands in the caller's scope, even when
	// the read resolved the global row.
	settings.SessionID = sessionID
	if err := h.Settings.Save(ctx, settings); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save settings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": settings})
}

// Reset handles POST /v1/hosts/:id/settings/reset.  It deletes the
// caller's scoped row so the next read resolves the global row or the
// seeded defaults again.
func (h *HostSettingsHandler) Reset(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.SessionID(c)
	if err := h.Settings.Reset(ctx, c.Param("id"), sessionID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset settings"})
	}
	settings, err := h.Settings.GetOrSeed(ctx, c.Param("id"), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load settings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": settings})
}
