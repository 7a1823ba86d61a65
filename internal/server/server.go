// server.go
//
// Fiber application assembly
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

// Package server assembles the Fiber application: middleware, routes and the error envelope
package server

import (
	"errors"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/handlers"
	"github.com/localnerve/backoffice-propsdb/internal/middleware"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/store"
	"github.com/localnerve/backoffice-propsdb/internal/types"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are wired to
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Docs     store.DocumentStore
	Registry *resources.Registry
	// Sessions validates authorizer cookies; nil disables the cookie path
	Sessions middleware.SessionValidator
	// Metrics registers the prometheus middleware and /metrics
	Metrics bool
	// AccessLog enables the fiber request logger
	AccessLog bool
}

// New builds the Fiber application
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if deps.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(compress.New())

	if deps.Metrics {
		prometheus := fiberprometheus.New("backoffice_propsdb")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	properties := services.NewPropertyService(deps.DB)
	profiles := services.NewProfileService(deps.DB)
	docs := services.NewDocumentService(deps.Docs, deps.Registry, properties)

	healthHandler := &handlers.HealthHandler{Config: deps.Config, DB: deps.DB, Docs: deps.Docs}
	app.Get("/health", healthHandler.Health)

	api := app.Group("/api", middleware.VersionMiddleware(), middleware.Authenticate(deps.Config, deps.Sessions))
	admins := middleware.RequireRoles(resources.RoleCAdmin, resources.RoleAdmin)

	schemaHandler := &handlers.SchemaHandler{Registry: deps.Registry}
	api.Get("/resources", schemaHandler.ListResources)
	api.Get("/resources/:name", schemaHandler.GetResource)

	propertyHandler := &handlers.PropertyHandler{Properties: properties}
	api.Get("/properties", propertyHandler.ListProperties)
	api.Post("/properties", admins, propertyHandler.SaveProperty)
	api.Get("/properties/:id", propertyHandler.GetProperty)

	profileHandler := &handlers.ProfileHandler{Profiles: profiles}
	api.Get("/profile", profileHandler.ListProfiles)
	api.Post("/profile", admins, profileHandler.SaveProfile)
	api.Get("/profile/me", profileHandler.Me)

	reg := deps.Registry
	read := middleware.ResourceAccess(reg, middleware.ActionRead)
	edit := middleware.ResourceAccess(reg, middleware.ActionEdit)
	del := middleware.ResourceAccess(reg, middleware.ActionDelete)

	docHandler := &handlers.DocumentHandler{Docs: docs}
	api.Get("/:resource", read, docHandler.ListDocuments)
	api.Post("/:resource", edit, docHandler.CreateDocument)
	api.Post("/:resource/report/:propertyID", edit, docHandler.EnsureReport)
	api.Get("/:resource/:id", read, docHandler.GetDocument)
	api.Put("/:resource/:id", edit, docHandler.ReplaceDocument)
	api.Delete("/:resource/:id", del, docHandler.DeleteDocument)
	api.Post("/:resource/:id/:field", edit, docHandler.AppendItem)
	api.Put("/:resource/:id/:field", edit, docHandler.SetObject)
	api.Patch("/:resource/:id/:field/:ref", edit, docHandler.ReplaceItem)
	api.Delete("/:resource/:id/:field/:ref", del, docHandler.RemoveItem)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

// ErrorHandler renders errors that escape the handlers in the response envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	versionError := false
	if code == fiber.StatusConflict || strings.HasPrefix(message, "E_VERSION") {
		versionError = true
		errorType = utils.ErrorTypeVersion
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(utils.ErrorResponseStruct{
		Status:       code,
		Message:      message,
		Ok:           false,
		VersionError: versionError,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		URL:          c.OriginalURL(),
		Type:         errorType,
	})
}
