package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uprez/upgrade-engine/internal/repository"
)

// PropertyHandler serves read access to the property portfolio.
// Properties are shared across all sessions.
type PropertyHandler struct {
	Props *repository.PropertyRepo
}

// NewPropertyHandler constructs a PropertyHandler.
func NewPropertyHandler(props *repository.PropertyRepo) *PropertyHandler {
	if props == nil {
		panic("nil repository passed to NewPropertyHandler")
	}
	return &PropertyHandler{Props: props}
}

// List handles GET /v1/properties.
func (h *PropertyHandler) List(c echo.Context) error {
	items, err := h.Props.GetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/properties/:id.
func (h *PropertyHandler) Get(c echo.Context) error {
	item, err := h.Props.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch property"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}
