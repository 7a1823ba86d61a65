// server_test.go
//
// API tests
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

package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/backoffice-propsdb/internal/resources"
	"github.com/localnerve/backoffice-propsdb/internal/server"
	"github.com/localnerve/backoffice-propsdb/internal/testutil"
	"github.com/localnerve/backoffice-propsdb/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caller struct {
	t     *testing.T
	app   *testutil.App
	token string
}

func newCaller(t *testing.T, app *testutil.App, role string) *caller {
	return &caller{t: t, app: app, token: testutil.Token(t, "user-"+role, role)}
}

func (c *caller) do(method, path string, body interface{}) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

func (c *caller) object(method, path string, body interface{}, wantStatus int) map[string]interface{} {
	c.t.Helper()
	status, raw := c.do(method, path, body)
	require.Equal(c.t, wantStatus, status, string(raw))

	var out map[string]interface{}
	require.NoError(c.t, json.Unmarshal(raw, &out))
	return out
}

func (c *caller) list(path string) []map[string]interface{} {
	c.t.Helper()
	status, raw := c.do(http.MethodGet, path, nil)
	require.Equal(c.t, http.StatusOK, status, string(raw))

	var out []map[string]interface{}
	require.NoError(c.t, json.Unmarshal(raw, &out))
	return out
}

func siteVisitBody() map[string]interface{} {
	return map[string]interface{}{
		"property_id": testutil.PropertyID,
		"visit_date":  "2026-03-01",
		"visited_by":  "R. Iyer",
		"follow_up_action_plan": []interface{}{
			map[string]interface{}{"id": "a1", "action": "Fix pump", "responsible_person": "Ops", "target_date": "2026-03-10"},
			map[string]interface{}{"id": "a2", "action": "Paint rails", "responsible_person": "Maint", "target_date": "2026-03-20"},
		},
	}
}

func TestUnauthenticated(t *testing.T) {
	app := testutil.NewApp(t)
	anon := &caller{t: t, app: app}

	status, raw := anon.do(http.MethodGet, "/api/site-visit-details", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var body utils.ErrorResponseStruct
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Ok)
	assert.Equal(t, utils.ErrorTypeForbidden, body.Type)
	assert.Equal(t, "/api/site-visit-details", body.URL)
}

func TestDocumentLifecycle(t *testing.T) {
	app := testutil.NewApp(t)
	admin := newCaller(t, app, resources.RoleAdmin)
	base := "/api/site-visit-details"

	created := admin.object(http.MethodPost, base, siteVisitBody(), http.StatusCreated)
	id := created["id"].(string)
	assert.Equal(t, float64(1), created["version"])
	assert.Equal(t, testutil.PropertyID, created["property_id"])

	listed := admin.list(base + "?property_id=" + testutil.PropertyID)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0]["id"])
	assert.Empty(t, admin.list(base+"?property_id=elsewhere"))

	got := admin.object(http.MethodGet, base+"/"+id, nil, http.StatusOK)
	assert.Equal(t, "R. Iyer", got["visited_by"])

	replacement := siteVisitBody()
	replacement["visited_by"] = "S. Rao"
	replacement["version"] = 1
	replaced := admin.object(http.MethodPut, base+"/"+id, replacement, http.StatusOK)
	assert.Equal(t, float64(2), replaced["version"])

	conflict := admin.object(http.MethodPut, base+"/"+id, replacement, http.StatusConflict)
	assert.Equal(t, true, conflict["versionError"])
	assert.Equal(t, utils.ErrorTypeVersion, conflict["type"])

	delete(replacement, "version")
	admin.object(http.MethodPut, base+"/"+id, replacement, http.StatusOK)

	admin.object(http.MethodDelete, base+"/"+id+"?version=1", nil, http.StatusConflict)
	admin.object(http.MethodDelete, base+"/"+id, nil, http.StatusOK)
	admin.object(http.MethodGet, base+"/"+id, nil, http.StatusNotFound)
	assert.Empty(t, admin.list(base))
}

func TestCreateValidation(t *testing.T) {
	app := testutil.NewApp(t)
	admin := newCaller(t, app, resources.RoleAdmin)

	body := siteVisitBody()
	delete(body, "visit_date")
	out := admin.object(http.MethodPost, "/api/site-visit-details", body, http.StatusBadRequest)
	assert.Equal(t, utils.ErrorTypeInput, out["type"])

	status, _ := admin.do(http.MethodPost, "/api/site-visit-details", []int{1, 2})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSiteVisitFollowUpDelete(t *testing.T) {
	app := testutil.NewApp(t)
	admin := newCaller(t, app, resources.RoleAdmin)
	base := "/api/site-visit-details"

	created := admin.object(http.MethodPost, base, siteVisitBody(), http.StatusCreated)
	id := created["id"].(string)
	second := created["follow_up_action_plan"].([]interface{})[1]

	admin.object(http.MethodDelete, fmt.Sprintf("%s/%s/follow_up_action_plan/a1", base, id), nil, http.StatusOK)

	listed := admin.list(base + "?property_id=" + testutil.PropertyID)
	require.Len(t, listed, 1)
	assert.Equal(t, []interface{}{second}, listed[0]["follow_up_action_plan"])
}

func TestNestedItemRoutes(t *testing.T) {
	app := testutil.NewApp(t)
	field := newCaller(t, app, resources.RolePropertyUser)
	base := "/api/site-visit-details"

	created := field.object(http.MethodPost, base, siteVisitBody(), http.StatusCreated)
	id := created["id"].(string)
	itemsURL := fmt.Sprintf("%s/%s/observations", base, id)

	appended := field.object(http.MethodPost, itemsURL, map[string]interface{}{
		"version": 1,
		"item":    map[string]interface{}{"area": "Roof", "observation": "Loose tiles"},
	}, http.StatusCreated)
	observations := appended["observations"].([]interface{})
	require.Len(t, observations, 1)
	obsID := observations[0].(map[string]interface{})["id"].(string)

	patched := field.object(http.MethodPatch, itemsURL+"/"+obsID, map[string]interface{}{
		"version": 2,
		"item":    map[string]interface{}{"area": "Roof", "observation": "Tiles replaced", "severity": "low"},
	}, http.StatusOK)
	item := patched["observations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, obsID, item["id"])
	assert.Equal(t, "Tiles replaced", item["observation"])

	stale := field.object(http.MethodPatch, itemsURL+"/"+obsID, map[string]interface{}{
		"version": 2,
		"item":    map[string]interface{}{"area": "Roof", "observation": "again"},
	}, http.StatusConflict)
	assert.Equal(t, true, stale["versionError"])

	field.object(http.MethodPatch, itemsURL+"/missing", map[string]interface{}{
		"item": map[string]interface{}{"area": "Roof", "observation": "x"},
	}, http.StatusNotFound)
	field.object(http.MethodPost, fmt.Sprintf("%s/%s/not_a_field", base, id), map[string]interface{}{
		"item": map[string]interface{}{"a": "b"},
	}, http.StatusNotFound)

	signed := field.object(http.MethodPut, fmt.Sprintf("%s/%s/sign_off", base, id), map[string]interface{}{
		"item": map[string]interface{}{"signed_by": "Manager"},
	}, http.StatusOK)
	assert.Equal(t, "Manager", signed["sign_off"].(map[string]interface{})["signed_by"])

	// property users cannot delete
	field.object(http.MethodDelete, itemsURL+"/"+obsID, nil, http.StatusForbidden)
	admin := newCaller(t, app, resources.RoleAdmin)
	removed := admin.object(http.MethodDelete, itemsURL+"/"+obsID, nil, http.StatusOK)
	assert.Empty(t, removed["observations"])
}

func TestEnsureReport(t *testing.T) {
	app := testutil.NewApp(t)
	admin := newCaller(t, app, resources.RoleAdmin)
	url := "/api/cctv-audit-reports/report/" + testutil.PropertyID

	first := admin.object(http.MethodPost, url, nil, http.StatusCreated)
	second := admin.object(http.MethodPost, url, nil, http.StatusOK)
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, []interface{}{}, first["cctv_audit_checklist"])

	admin.object(http.MethodPost, "/api/work-permits/report/"+testutil.PropertyID, nil, http.StatusBadRequest)
	assert.Len(t, admin.list("/api/cctv-audit-reports?property_id="+testutil.PropertyID), 1)
}

func TestUnknownResource(t *testing.T) {
	app := testutil.NewApp(t)
	admin := newCaller(t, app, resources.RoleAdmin)

	admin.object(http.MethodGet, "/api/not-a-resource", nil, http.StatusNotFound)
	admin.object(http.MethodGet, "/api/resources/not-a-resource", nil, http.StatusNotFound)
	admin.object(http.MethodGet, "/api/a/b/c/d/e", nil, http.StatusNotFound)
}

func TestResourceDefinitions(t *testing.T) {
	app := testutil.NewApp(t)
	field := newCaller(t, app, resources.RolePropertyUser)

	all := field.list("/api/resources")
	assert.Len(t, all, len(resources.Definitions()))

	def := field.object(http.MethodGet, "/api/resources/work-permits", nil, http.StatusOK)
	assert.Equal(t, "record", def["kind"])
	assert.Contains(t, def["edit_roles"], resources.RolePropertyUser)
}

func TestPropertiesAndProfiles(t *testing.T) {
	app := testutil.NewApp(t)
	cadmin := newCaller(t, app, resources.RoleCAdmin)
	field := newCaller(t, app, resources.RolePropertyUser)

	field.object(http.MethodPost, "/api/properties", map[string]interface{}{"id": "p2", "name": "Annex"}, http.StatusForbidden)
	cadmin.object(http.MethodPost, "/api/properties", map[string]interface{}{"id": "p2", "name": "Annex"}, http.StatusOK)
	cadmin.object(http.MethodPost, "/api/properties", map[string]interface{}{"id": "p3"}, http.StatusBadRequest)
	assert.Len(t, field.list("/api/properties"), 2)
	field.object(http.MethodGet, "/api/properties/p2", nil, http.StatusOK)
	field.object(http.MethodGet, "/api/properties/p9", nil, http.StatusNotFound)

	cadmin.object(http.MethodPost, "/api/profile", map[string]interface{}{
		"user_id": "user-property_user", "name": "Field", "role": "property_user", "property_ids": []string{testutil.PropertyID},
	}, http.StatusOK)
	profiles := field.list("/api/profile")
	require.Len(t, profiles, 1)
	assert.Equal(t, "property_user", profiles[0]["role"])

	me := field.object(http.MethodGet, "/api/profile/me", nil, http.StatusOK)
	assert.Equal(t, "user-property_user", me["user_id"])
	assert.Equal(t, resources.RolePropertyUser, me["role"])
	assert.Equal(t, "token", me["source"])
	assert.NotNil(t, me["profile"])

	meAdmin := cadmin.object(http.MethodGet, "/api/profile/me", nil, http.StatusOK)
	assert.Nil(t, meAdmin["profile"])

	single := cadmin.object(http.MethodPost, "/api/profile", map[string]interface{}{
		"user_id": "user-single", "role": "admin", "property_ids": 7,
	}, http.StatusOK)
	assert.Equal(t, []interface{}{"7"}, single["property_ids"])
}

func TestHealth(t *testing.T) {
	app := testutil.NewApp(t)
	anon := &caller{t: t, app: app}

	out := anon.object(http.MethodGet, "/health", nil, http.StatusOK)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, "ok", out["document_store"])
}

func TestErrorHandlerEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/stale", func(c *fiber.Ctx) error {
		return fmt.Errorf("E_VERSION mismatch")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/stale", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body utils.ErrorResponseStruct
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.VersionError)
}
