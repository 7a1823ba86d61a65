package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
)

// ItemInput is the body of the nested item and nested object routes
type ItemInput struct {
	Version types.Version          `json:"version" swaggertype:"integer"`
	Item    map[string]interface{} `json:"item"`
}

func parseItemInput(c *fiber.Ctx) (*ItemInput, error) {
	var input ItemInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// AppendItem handles POST /api/:resource/:id/:field
// @Summary Append a nested item
// @Description Append an item to a nested array; an id is assigned when the item has none
// @Tags Items
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param field path string true "Nested array field"
// @Param body body ItemInput true "Item and optional expected version"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id}/{field} [post]
func (h *DocumentHandler) AppendItem(c *fiber.Ctx) error {
	input, err := parseItemInput(c)
	if err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}
	if input.Item == nil {
		return invalidInput(c, "Invalid input: item is required")
	}

	doc, err := h.Docs.AppendItem(c.UserContext(), c.Params("resource"), c.Params("id"), c.Params("field"), input.Item, input.Version)
	if err != nil {
		return respondError(c, err, "appendItem")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusCreated)
}

// ReplaceItem handles PATCH /api/:resource/:id/:field/:ref
// @Summary Replace a nested item
// @Description Replace the item whose id is ref, or the id-less item at index ref
// @Tags Items
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param field path string true "Nested array field"
// @Param ref path string true "Item id or index"
// @Param body body ItemInput true "Item and optional expected version"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id}/{field}/{ref} [patch]
func (h *DocumentHandler) ReplaceItem(c *fiber.Ctx) error {
	input, err := parseItemInput(c)
	if err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}
	if input.Item == nil {
		return invalidInput(c, "Invalid input: item is required")
	}

	doc, err := h.Docs.ReplaceItem(c.UserContext(), c.Params("resource"), c.Params("id"), c.Params("field"), c.Params("ref"), input.Item, input.Version)
	if err != nil {
		return respondError(c, err, "replaceItem")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// RemoveItem handles DELETE /api/:resource/:id/:field/:ref
// @Summary Remove a nested item
// @Tags Items
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param field path string true "Nested array field"
// @Param ref path string true "Item id or index"
// @Param version query int false "Expected document version"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id}/{field}/{ref} [delete]
func (h *DocumentHandler) RemoveItem(c *fiber.Ctx) error {
	version, err := queryVersion(c)
	if err != nil {
		return invalidInput(c, "Invalid version: %v", err)
	}

	doc, err := h.Docs.RemoveItem(c.UserContext(), c.Params("resource"), c.Params("id"), c.Params("field"), c.Params("ref"), version)
	if err != nil {
		return respondError(c, err, "removeItem")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// SetObject handles PUT /api/:resource/:id/:field
// @Summary Replace a nested object
// @Tags Items
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param field path string true "Nested object field"
// @Param body body ItemInput true "Object and optional expected version"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id}/{field} [put]
func (h *DocumentHandler) SetObject(c *fiber.Ctx) error {
	input, err := parseItemInput(c)
	if err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}
	if input.Item == nil {
		return invalidInput(c, "Invalid input: item is required")
	}

	doc, err := h.Docs.SetObject(c.UserContext(), c.Params("resource"), c.Params("id"), c.Params("field"), input.Item, input.Version)
	if err != nil {
		return respondError(c, err, "setObject")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}
