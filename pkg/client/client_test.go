package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/localnerve/backoffice-propsdb/internal/testutil"
	"github.com/localnerve/backoffice-propsdb/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitions(t *testing.T) {
	e := newEnv(t)
	c := e.client("property_user")
	ctx := context.Background()

	defs, err := c.Definitions(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, defs)

	def, err := c.Definition(ctx, "site-visit-details")
	require.NoError(t, err)
	assert.Equal(t, client.KindRecord, def.Kind)
	_, ok := def.Array("follow_up_action_plan")
	assert.True(t, ok)
	_, ok = def.Object("sign_off")
	assert.True(t, ok)

	_, err = c.Definition(ctx, "nope")
	assert.True(t, client.IsNotFound(err))
}

func TestAPIErrorEnvelope(t *testing.T) {
	e := newEnv(t)
	c := e.client("admin")
	ctx := context.Background()

	created, err := c.Create(ctx, "work-permits", client.Record{
		"property_id":  testutil.PropertyID,
		"permit_type":  "electrical",
		"requested_by": "Ops",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), created.Version())

	stale := created.Clone()
	stale["version"] = 7
	_, err = c.Replace(ctx, "work-permits", created.ID(), stale)
	require.Error(t, err)
	assert.True(t, client.IsVersionConflict(err))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.True(t, apiErr.VersionError)
	assert.Contains(t, apiErr.Error(), "E_VERSION")

	_, err = c.Create(ctx, "work-permits", client.Record{"property_id": testutil.PropertyID})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.False(t, client.IsVersionConflict(err))
}

func TestNestedItemCalls(t *testing.T) {
	e := newEnv(t)
	c := e.client("admin")
	ctx := context.Background()

	report, err := c.EnsureReport(ctx, "fire-safety-reports", testutil.PropertyID)
	require.NoError(t, err)
	assert.Empty(t, report.Items("fire_drills"))

	updated, err := c.AppendItem(ctx, "fire-safety-reports", report.ID(), "fire_drills",
		client.Record{"drill_date": "2026-02-02", "conducted_by": "Safety officer"}, report.Version())
	require.NoError(t, err)
	drills := updated.Items("fire_drills")
	require.Len(t, drills, 1)
	drillID := drills[0].ID()
	require.NotEmpty(t, drillID)

	updated, err = c.ReplaceItem(ctx, "fire-safety-reports", report.ID(), "fire_drills", drillID,
		client.Record{"drill_date": "2026-02-03", "conducted_by": "Safety officer"}, updated.Version())
	require.NoError(t, err)
	assert.Equal(t, "2026-02-03", updated.Items("fire_drills")[0]["drill_date"])
	assert.Equal(t, drillID, updated.Items("fire_drills")[0].ID())

	_, err = c.RemoveItem(ctx, "fire-safety-reports", report.ID(), "fire_drills", drillID, report.Version())
	assert.True(t, client.IsVersionConflict(err))

	updated, err = c.RemoveItem(ctx, "fire-safety-reports", report.ID(), "fire_drills", drillID, 0)
	require.NoError(t, err)
	assert.Empty(t, updated.Items("fire_drills"))

	again, err := c.EnsureReport(ctx, "fire-safety-reports", testutil.PropertyID)
	require.NoError(t, err)
	assert.Equal(t, report.ID(), again.ID())
}

func TestPropertiesAndMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client("admin").SaveProperty(ctx, &client.Property{ID: "annex", Name: "Annex", City: "Pune"})
	require.NoError(t, err)

	field := e.client("property_user")
	properties, err := field.Properties(ctx)
	require.NoError(t, err)
	assert.Len(t, properties, 2)

	property, err := field.Property(ctx, "annex")
	require.NoError(t, err)
	assert.Equal(t, "Annex", property.Name)

	me, err := field.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-property_user", me.UserID)
	assert.Equal(t, client.RolePropertyUser, me.Role)

	health, err := field.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
}

func TestRecordHelpers(t *testing.T) {
	r := client.Record{
		"id":          "doc-1",
		"property_id": "prop-1",
		"version":     float64(3),
		"items":       []interface{}{map[string]interface{}{"id": "x"}, "junk"},
	}
	assert.Equal(t, "doc-1", r.ID())
	assert.Equal(t, "prop-1", r.PropertyID())
	assert.Equal(t, uint64(3), r.Version())
	assert.Len(t, r.Items("items"), 1)
	assert.Empty(t, r.Items("missing"))

	clone := r.Clone()
	clone["id"] = "doc-2"
	assert.Equal(t, "doc-1", r.ID())
	assert.Equal(t, uint64(0), client.Record{}.Version())
}
