package handlers

import (
	"net/http"

	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/labstack/echo/v4"
)

type VariantHandlers struct {
	variantService services.VariantService
}

func NewVariantHandlers(variantService services.VariantService) *VariantHandlers {
	return &VariantHandlers{variantService: variantService}
}

// ListVariants handles GET /v1/variants and returns the active variant dimensions.
func (h *VariantHandlers) ListVariants(c echo.Context) error {
	variants, err := h.variantService.ListActive(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, variants)
}

// GetVariant handles GET /v1/variants/:id
func (h *VariantHandlers) GetVariant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	variant, err := h.variantService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, variant)
}

// CreateVariant handles POST /v1/variants
func (h *VariantHandlers) CreateVariant(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	variant := &models.Variant{Title: req.Title, Description: req.Description, Active: true}
	if req.Active != nil {
		variant.Active = *req.Active
	}
	if err := h.variantService.Create(c.Request().Context(), variant); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, variant)
}
