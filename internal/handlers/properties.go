package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
)

// PropertyHandler serves the property routes
type PropertyHandler struct {
	Properties *services.PropertyService
}

// ListProperties handles GET /api/properties
// @Summary List properties
// @Tags Properties
// @Produce json
// @Success 200 {array} models.Property
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) ListProperties(c *fiber.Ctx) error {
	properties, err := h.Properties.ListProperties(c.UserContext())
	if err != nil {
		return respondError(c, err, "listProperties")
	}
	return utils.SuccessResponse(c, properties, fiber.StatusOK)
}

// GetProperty handles GET /api/properties/:id
// @Summary Get a property
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *fiber.Ctx) error {
	property, err := h.Properties.GetProperty(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "getProperty")
	}
	return utils.SuccessResponse(c, property, fiber.StatusOK)
}

// SaveProperty handles POST /api/properties
// @Summary Create or update a property
// @Tags Properties
// @Accept json
// @Produce json
// @Param body body models.Property true "Property"
// @Success 200 {object} models.Property
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) SaveProperty(c *fiber.Ctx) error {
	var property models.Property
	if err := c.BodyParser(&property); err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}

	if err := h.Properties.SaveProperty(c.UserContext(), &property); err != nil {
		return respondError(c, err, "saveProperty")
	}
	return utils.SuccessResponse(c, property, fiber.StatusOK)
}
