package testutil

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/auth"
	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/models"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/server"
	"github.com/localnerve/backoffice-propsdb/internal/store/sqlstore"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Secret signs the tokens of test callers
const Secret = "test-secret"

// PropertyID is the property seeded by NewApp
const PropertyID = "prop-1"

// App is a fully wired application over an in-memory database
type App struct {
	*fiber.App
	DB     *gorm.DB
	Config *config.Config
}

// NewApp builds the server over a fresh database holding one property
func NewApp(t *testing.T) *App {
	t.Helper()

	db := NewDB(t)
	require.NoError(t, db.Create(&models.Property{ID: PropertyID, Name: "Tower A", City: "Pune"}).Error)

	cfg := &config.Config{
		DBType:        "sqlite",
		DBDatabase:    ":memory:",
		DocumentStore: "sql",
		JWTSecret:     Secret,
	}

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Docs:     sqlstore.New(db),
		Registry: resources.Default(),
	})
	return &App{App: app, DB: db, Config: cfg}
}

// Token returns a bearer token for userID with role
func Token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.IssueToken(Secret, userID, role, userID+"@example.com", time.Hour)
	require.NoError(t, err)
	return token
}
