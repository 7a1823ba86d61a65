// page_test.go
//
// Resource page tests
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

package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/backoffice-propsdb/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var writeModes = []struct {
	name string
	opts []client.PageOption
}{
	{name: "targeted"},
	{name: "legacy", opts: []client.PageOption{client.WithLegacyWrites()}},
}

func TestSiteVisitFollowUpDelete(t *testing.T) {
	for _, mode := range writeModes {
		t.Run(mode.name, func(t *testing.T) {
			e := newEnv(t)
			p := e.page("admin", "site-visit-details", mode.opts...)
			id := createSiteVisit(t, p)
			second := p.Items(id, "follow_up_action_plan")[1]

			sent, err := p.DeleteItem(context.Background(), id, "follow_up_action_plan", "a1")
			require.NoError(t, err)
			assert.True(t, sent)

			require.Len(t, p.Records(), 1)
			assert.Equal(t, []client.Record{second}, p.Items(id, "follow_up_action_plan"))
			assert.Empty(t, p.Error())
		})
	}
}

func TestCreateShowsInNextFetch(t *testing.T) {
	e := newEnv(t)
	p := e.page("property_user", "work-permits")
	assert.Empty(t, p.Records())

	require.NoError(t, p.OpenCreate())
	require.NoError(t, p.SetValue("permit_type", "hot work"))
	require.NoError(t, p.SetValue("requested_by", "Ops"))
	require.NoError(t, p.Submit(context.Background()))

	assert.False(t, p.Edit.IsOpen())
	require.Len(t, p.Records(), 1)
	assert.Equal(t, "hot work", p.Records()[0]["permit_type"])

	other := e.page("admin", "work-permits")
	assert.Len(t, other.Records(), 1)
}

func TestEditItemLeavesSiblings(t *testing.T) {
	for _, mode := range writeModes {
		t.Run(mode.name, func(t *testing.T) {
			e := newEnv(t)
			p := e.page("admin", "site-visit-details", mode.opts...)
			id := createSiteVisit(t, p)
			before := p.Items(id, "follow_up_action_plan")

			require.NoError(t, p.OpenEditItem(id, "follow_up_action_plan", "a1"))
			require.NoError(t, p.SetValue("action", "Replace pump"))
			require.NoError(t, p.SetValue("status", "open"))
			require.NoError(t, p.Submit(context.Background()))

			after := p.Items(id, "follow_up_action_plan")
			require.Len(t, after, 2)
			assert.Equal(t, "a1", after[0].ID())
			assert.Equal(t, "Replace pump", after[0]["action"])
			assert.Equal(t, "open", after[0]["status"])
			assert.Equal(t, before[1], after[1])
		})
	}
}

func TestItemsWithoutIDAreAddressedByIndex(t *testing.T) {
	e := newEnv(t)
	c := e.client("admin")
	ctx := context.Background()

	body := siteVisit()
	body["property_id"] = "prop-1"
	body["observations"] = []interface{}{
		map[string]interface{}{"area": "Lobby", "observation": "Wet floor"},
		map[string]interface{}{"area": "Roof", "observation": "Loose tiles"},
	}
	created, err := c.Create(ctx, "site-visit-details", body)
	require.NoError(t, err)

	p := e.page("admin", "site-visit-details", client.WithLegacyWrites())
	require.NoError(t, p.OpenEditItem(created.ID(), "observations", "1"))
	require.NoError(t, p.SetValue("observation", "Tiles fixed"))
	require.NoError(t, p.Submit(ctx))

	items := p.Items(created.ID(), "observations")
	require.Len(t, items, 2)
	assert.Equal(t, "Wet floor", items[0]["observation"])
	assert.Equal(t, "Tiles fixed", items[1]["observation"])

	_, err = p.DeleteItem(ctx, created.ID(), "observations", "0")
	require.NoError(t, err)
	items = p.Items(created.ID(), "observations")
	require.Len(t, items, 1)
	assert.Equal(t, "Roof", items[0]["area"])
}

func TestMissingRequiredSendsNothing(t *testing.T) {
	e := newEnv(t)
	p := e.page("admin", "site-visit-details")

	require.NoError(t, p.OpenCreate())
	require.NoError(t, p.SetValue("visit_date", "2026-03-01"))
	require.NoError(t, p.SetValue("visited_by", "  "))

	sent := e.requests.count()
	err := p.Submit(context.Background())

	var validation *client.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, []string{"visited_by"}, validation.Missing)
	assert.Equal(t, sent, e.requests.count())
	assert.True(t, p.Edit.IsOpen())
	assert.Empty(t, p.Error())

	require.NoError(t, p.SetValue("visited_by", "R. Iyer"))
	require.NoError(t, p.Submit(context.Background()))
	assert.Len(t, p.Records(), 1)
}

func TestViewHasNoSideEffects(t *testing.T) {
	e := newEnv(t)
	p := e.page("admin", "site-visit-details")
	id := createSiteVisit(t, p)
	before := p.Records()[0]

	sent := e.requests.count()
	require.NoError(t, p.OpenView(id, "", ""))
	selection, open := p.View.Payload()
	require.True(t, open)
	assert.Equal(t, id, selection.Record.ID())

	require.NoError(t, p.OpenView(id, "follow_up_action_plan", "a2"))
	selection, _ = p.View.Payload()
	assert.Equal(t, "Paint rails", selection.Record["action"])

	p.CloseView()
	assert.False(t, p.View.IsOpen())
	assert.Equal(t, sent, e.requests.count())

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, before, p.Records()[0])
}

func TestDeclinedConfirmationSendsNothing(t *testing.T) {
	e := newEnv(t)
	var prompts []string
	p := e.page("admin", "site-visit-details", client.WithConfirm(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return false
	}))
	id := createSiteVisit(t, p)

	sent := e.requests.count()
	deleted, err := p.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = p.DeleteItem(context.Background(), id, "follow_up_action_plan", "a1")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, sent, e.requests.count())
	assert.Len(t, prompts, 2)
	assert.Len(t, p.Items(id, "follow_up_action_plan"), 2)
}

func TestDeleteRecord(t *testing.T) {
	e := newEnv(t)
	p := e.page("admin", "site-visit-details", client.WithConfirm(func(string) bool { return true }))
	id := createSiteVisit(t, p)

	deleted, err := p.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, p.Records())

	_, err = e.client("admin").Get(context.Background(), "site-visit-details", id)
	assert.True(t, client.IsNotFound(err))
}

func TestRoleGating(t *testing.T) {
	e := newEnv(t)

	field := e.page("property_user", "site-visit-details")
	assert.Equal(t, "property_user", field.Role())
	assert.True(t, field.CanAdd())
	assert.True(t, field.CanEdit())
	assert.False(t, field.CanDelete())

	reports := e.page("property_user", "cctv-audit-reports")
	assert.False(t, reports.CanAdd())
	assert.ErrorIs(t, reports.OpenAddItem("", "cctv_audit_checklist"), client.ErrNotAllowed)

	admin := e.page("admin", "site-visit-details")
	id := createSiteVisit(t, admin)
	require.NoError(t, field.Refresh(context.Background()))

	sent := e.requests.count()
	_, err := field.Delete(context.Background(), id)
	assert.ErrorIs(t, err, client.ErrNotAllowed)
	assert.Equal(t, sent, e.requests.count())
}

func TestRoleFromProfileScan(t *testing.T) {
	e := newEnv(t)
	_, err := e.client("cadmin").SaveProfile(context.Background(), &client.Profile{
		UserID: "user-scanned",
		Name:   "Scanned",
		Role:   "admin",
	})
	require.NoError(t, err)

	// the token claims property_user, the stored profile says admin
	p := e.page("property_user", "vendor-masters", client.WithProfileScan("user-scanned"))
	assert.Equal(t, "admin", p.Role())
	assert.True(t, p.CanDelete())

	unknown := e.page("property_user", "vendor-masters", client.WithProfileScan("nobody"))
	assert.Equal(t, "", unknown.Role())
	assert.False(t, unknown.CanAdd())
}

func TestAddItemCreatesMissingReport(t *testing.T) {
	for _, mode := range writeModes {
		t.Run(mode.name, func(t *testing.T) {
			e := newEnv(t)
			p := e.page("admin", "inventory-reports", mode.opts...)
			assert.Empty(t, p.Records())
			assert.ErrorIs(t, p.OpenCreate(), client.ErrNotAllowed)

			require.NoError(t, p.OpenAddItem("", "inventory_items"))
			require.NoError(t, p.SetValue("item_name", "Bulbs"))
			require.NoError(t, p.SetValue("quantity", 40))
			require.NoError(t, p.Submit(context.Background()))

			require.Len(t, p.Records(), 1)
			items := p.Items("", "inventory_items")
			require.Len(t, items, 1)
			assert.Equal(t, "Bulbs", items[0]["item_name"])
			assert.NotEmpty(t, items[0].ID())

			require.NoError(t, p.OpenAddItem("", "inventory_items"))
			require.NoError(t, p.SetValue("item_name", "Fuses"))
			require.NoError(t, p.SetValue("quantity", 12))
			require.NoError(t, p.Submit(context.Background()))

			require.Len(t, p.Records(), 1)
			assert.Len(t, p.Items("", "inventory_items"), 2)
		})
	}
}

func TestReportPageNeedsProperty(t *testing.T) {
	e := newEnv(t)
	scoped := e.page("admin", "inventory-reports")
	require.NoError(t, scoped.OpenAddItem("", "inventory_items"))
	require.NoError(t, scoped.SetValue("item_name", "Bulbs"))
	require.NoError(t, scoped.SetValue("quantity", 40))
	require.NoError(t, scoped.Submit(context.Background()))

	p := client.NewPage(e.client("admin"), "inventory-reports", "")
	err := p.Load(context.Background())
	assert.ErrorIs(t, err, client.ErrNoProperty)
	assert.Equal(t, "Failed to fetch inventory reports", p.Error())
	assert.Empty(t, p.Records())

	require.NoError(t, p.OpenAddItem("", "inventory_items"))
	require.NoError(t, p.SetValue("item_name", "Stray"))
	require.NoError(t, p.SetValue("quantity", 1))
	assert.ErrorIs(t, p.Submit(context.Background()), client.ErrNoProperty)
	assert.Equal(t, "Failed to save changes", p.Error())

	require.NoError(t, scoped.Refresh(context.Background()))
	items := scoped.Items("", "inventory_items")
	require.Len(t, items, 1)
	assert.Equal(t, "Bulbs", items[0]["item_name"])
}

func TestEditObject(t *testing.T) {
	e := newEnv(t)
	p := e.page("admin", "site-visit-details")
	id := createSiteVisit(t, p)

	require.NoError(t, p.OpenEditObject(id, "sign_off"))
	require.NoError(t, p.SetValue("signed_by", "Manager"))
	require.NoError(t, p.Submit(context.Background()))

	assert.Equal(t, "Manager", p.Records()[0]["sign_off"].(map[string]interface{})["signed_by"])
	assert.ErrorIs(t, p.OpenEditObject(id, "observations"), client.ErrUnknownField)
}

func TestStaleWriteSetsSaveBanner(t *testing.T) {
	e := newEnv(t)
	first := e.page("admin", "site-visit-details")
	id := createSiteVisit(t, first)
	second := e.page("admin", "site-visit-details")

	require.NoError(t, first.OpenEditItem(id, "follow_up_action_plan", "a2"))
	require.NoError(t, first.SetValue("status", "done"))
	require.NoError(t, first.Submit(context.Background()))

	require.NoError(t, second.OpenEditItem(id, "follow_up_action_plan", "a2"))
	require.NoError(t, second.SetValue("status", "cancelled"))
	err := second.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, "Failed to save changes", second.Error())
	assert.True(t, client.IsVersionConflict(second.Err()))
	assert.True(t, second.Edit.IsOpen())

	require.NoError(t, second.Refresh(context.Background()))
	assert.Empty(t, second.Error())
	assert.Nil(t, second.Err())
	assert.Equal(t, "done", second.Items(id, "follow_up_action_plan")[1]["status"])
}

func TestFailureBanners(t *testing.T) {
	e := newEnv(t)
	p := e.page("admin", "site-visit-details", client.WithConfirm(func(string) bool { return true }))
	id := createSiteVisit(t, p)

	require.NoError(t, e.client("admin").Delete(context.Background(), "site-visit-details", id, 0))

	_, err := p.Delete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "Failed to delete site visit details", p.Error())
	assert.True(t, client.IsNotFound(p.Err()))

	unauthorized := client.NewPage(client.NewClient(e.url, "not-a-token"), "site-visit-details", "prop-1")
	require.Error(t, unauthorized.Load(context.Background()))
	assert.Equal(t, "Failed to fetch site-visit-details", unauthorized.Error())
}
