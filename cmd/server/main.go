// main.go
//
// Facilities back-office data service
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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/backoffice-propsdb/data"
	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/database"
	"github.com/localnerve/backoffice-propsdb/internal/logger"
	"github.com/localnerve/backoffice-propsdb/internal/middleware"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/server"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"go.uber.org/zap"

	_ "github.com/localnerve/backoffice-propsdb/docs/api" // Swagger docs
)

// @title Back-office PropsDB API
// @version 1.0.0
// @description Property-scoped back-office records with nested collections
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/backoffice-propsdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Log.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	docs, releaseDocs, err := database.OpenDocumentStore(ctx, cfg, db)
	if err != nil {
		logger.Log.Fatal("failed to open document store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseDocs(closeCtx)
	}()

	registry := resources.Default()

	if cfg.SeedData {
		properties := services.NewPropertyService(db)
		err := database.Seed(ctx, data.Seed,
			properties,
			services.NewProfileService(db),
			services.NewDocumentService(docs, registry, properties))
		if err != nil {
			logger.Log.Fatal("failed to seed data", zap.Error(err))
		}
	}

	deps := server.Deps{
		Config:    cfg,
		DB:        db,
		Docs:      docs,
		Registry:  registry,
		Metrics:   true,
		AccessLog: true,
	}
	if cfg.AuthzURL != "" {
		// The authorizer client is created on the first cookie request
		deps.Sessions = middleware.AuthorizerSessions(cfg)
	}
	app := server.New(deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Log.Info("gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Log.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("document_store", cfg.DocumentStore),
		zap.Int("resources", len(registry.All())))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("failed to start server", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
