package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
)

// SchemaHandler exposes the resource registry so clients can build pages from it
type SchemaHandler struct {
	Registry *resources.Registry
}

// ListResources handles GET /api/resources
// @Summary List resource definitions
// @Tags Resources
// @Produce json
// @Success 200 {array} resources.Resource
// @Security BearerAuth
// @Router /resources [get]
func (h *SchemaHandler) ListResources(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.Registry.All(), fiber.StatusOK)
}

// GetResource handles GET /api/resources/:name
// @Summary Get a resource definition
// @Tags Resources
// @Produce json
// @Param name path string true "Resource name"
// @Success 200 {object} resources.Resource
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /resources/{name} [get]
func (h *SchemaHandler) GetResource(c *fiber.Ctx) error {
	name := c.Params("name")
	res, ok := h.Registry.Lookup(name)
	if !ok {
		return utils.NotFoundResponse(c, fmt.Sprintf("Resource '%s' not found", name))
	}
	return utils.SuccessResponse(c, res, fiber.StatusOK)
}
