package database_test

import (
	"context"
	"testing"

	"github.com/localnerve/backoffice-propsdb/data"
	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/internal/database"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/services"
	"github.com/localnerve/backoffice-propsdb/internal/store/sqlstore"
	"github.com/localnerve/backoffice-propsdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn := database.MySQLDSN(&config.Config{
		DBHost:     "db.internal",
		DBPort:     "3306",
		DBUser:     "backoffice",
		DBPassword: "p@ss",
		DBDatabase: "props",
	})
	assert.Contains(t, dsn, "backoffice:p@ss@tcp(db.internal:3306)/props")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDialector(t *testing.T) {
	for _, dbType := range []string{"mysql", "mariadb", "postgres", "sqlite", "sqlserver", "mssql"} {
		d, err := database.Dialector(&config.Config{DBType: dbType, DBDatabase: "x"})
		require.NoError(t, err, dbType)
		assert.NotNil(t, d)
	}

	_, err := database.Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	properties := services.NewPropertyService(db)
	profiles := services.NewProfileService(db)
	docs := services.NewDocumentService(sqlstore.New(db), resources.Default(), properties)

	require.NoError(t, database.Seed(ctx, data.Seed, properties, profiles, docs))
	require.NoError(t, database.Seed(ctx, data.Seed, properties, profiles, docs))

	all, err := properties.ListProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visits, err := docs.ListDocuments(ctx, "site-visit-details", "tower-a")
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Len(t, visits[0].Body["follow_up_action_plan"], 2)

	field, err := profiles.GetProfile(ctx, "field-1")
	require.NoError(t, err)
	assert.Equal(t, "property_user", field.Role)
}

func TestOpenDocumentStoreDefaultsToSQL(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{DocumentStore: "sql"}

	docs, release, err := database.OpenDocumentStore(context.Background(), cfg, db)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, docs)
	assert.NoError(t, docs.Ping(context.Background()))
	assert.NoError(t, release(context.Background()))
}
