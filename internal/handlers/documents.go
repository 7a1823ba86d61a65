// documents.go
//
// Resource document handlers
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of backoffice-propsdb.
// backoffice-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// backoffice-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with backoffice-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
)

// DocumentHandler serves the generic resource document routes
type DocumentHandler struct {
	Docs *services.DocumentService
}

// ListDocuments handles GET /api/:resource/
// @Summary List resource documents
// @Description List the documents of a resource, optionally scoped to one property
// @Tags Documents
// @Produce json
// @Param resource path string true "Resource name"
// @Param property_id query string false "Property ID"
// @Success 200 {array} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/ [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.Docs.ListDocuments(c.UserContext(), c.Params("resource"), c.Query("property_id"))
	if err != nil {
		return respondError(c, err, "listDocuments")
	}
	return utils.SuccessResponse(c, docs, fiber.StatusOK)
}

// GetDocument handles GET /api/:resource/:id
// @Summary Get a resource document
// @Tags Documents
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	doc, err := h.Docs.GetDocument(c.UserContext(), c.Params("resource"), c.Params("id"))
	if err != nil {
		return respondError(c, err, "getDocument")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// CreateDocument handles POST /api/:resource/
// @Summary Create a resource document
// @Description Create a document; property scoped resources require property_id
// @Tags Documents
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param body body object true "Document"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/ [post]
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	body, err := parseObject(c)
	if err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}

	doc, err := h.Docs.CreateDocument(c.UserContext(), c.Params("resource"), body)
	if err != nil {
		return respondError(c, err, "createDocument")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusCreated)
}

// ReplaceDocument handles PUT /api/:resource/:id
// @Summary Replace a resource document
// @Description Replace the whole document. When "version" is present it must match the stored version.
// @Tags Documents
// @Accept json
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param body body object true "Document"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id} [put]
func (h *DocumentHandler) ReplaceDocument(c *fiber.Ctx) error {
	body, err := parseObject(c)
	if err != nil {
		return invalidInput(c, "Invalid input: %v", err)
	}
	version, err := versionOf(body)
	if err != nil {
		return invalidInput(c, "Invalid version: %v", err)
	}

	doc, err := h.Docs.ReplaceDocument(c.UserContext(), c.Params("resource"), c.Params("id"), body, version)
	if err != nil {
		return respondError(c, err, "replaceDocument")
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// DeleteDocument handles DELETE /api/:resource/:id
// @Summary Delete a resource document
// @Tags Documents
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Document ID"
// @Param version query int false "Expected document version"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	version, err := queryVersion(c)
	if err != nil {
		return invalidInput(c, "Invalid version: %v", err)
	}

	id := c.Params("id")
	if err := h.Docs.DeleteDocument(c.UserContext(), c.Params("resource"), id, version); err != nil {
		return respondError(c, err, "deleteDocument")
	}
	return utils.DeleteSuccessResponse(c, id)
}

// EnsureReport handles POST /api/:resource/report/:propertyID
// @Summary Get or create the report of a property
// @Description Returns the property's report document, creating an empty one when none exists
// @Tags Documents
// @Produce json
// @Param resource path string true "Report resource name"
// @Param propertyID path string true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /{resource}/report/{propertyID} [post]
func (h *DocumentHandler) EnsureReport(c *fiber.Ctx) error {
	doc, created, err := h.Docs.EnsureReport(c.UserContext(), c.Params("resource"), c.Params("propertyID"))
	if err != nil {
		return respondError(c, err, "ensureReport")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.SuccessResponse(c, doc, status)
}
