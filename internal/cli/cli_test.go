package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/localnerve/backoffice-propsdb/internal/auth"
	"github.com/localnerve/backoffice-propsdb/internal/cli"
	"github.com/localnerve/backoffice-propsdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t     *testing.T
	url   string
	token string
}

func newHarness(t *testing.T, role string) *harness {
	app := testutil.NewApp(t)
	srv := httptest.NewServer(adaptor.FiberApp(app.App))
	t.Cleanup(srv.Close)
	return &harness{t: t, url: srv.URL, token: testutil.Token(t, "user-"+role, role)}
}

// run executes the command line with stdin and returns stdout
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(strings.NewReader(stdin), &out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", h.url, "--token", h.token, "-p", testutil.PropertyID}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) records(args ...string) []map[string]interface{} {
	h.t.Helper()
	out, err := h.run("", append([]string{"list"}, args...)...)
	require.NoError(h.t, err, out)

	var records []map[string]interface{}
	require.NoError(h.t, json.Unmarshal([]byte(out), &records))
	return records
}

func TestAddListViewDelete(t *testing.T) {
	h := newHarness(t, "admin")

	out, err := h.run("", "add", "site-visit-details",
		"--set", "visit_date=2026-03-01",
		"--set", "visited_by=R. Iyer",
		"--json", `{"follow_up_action_plan":[{"id":"a1","action":"Fix pump","responsible_person":"Ops","target_date":"2026-03-10"}]}`)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Saved")

	records := h.records("site-visit-details")
	require.Len(t, records, 1)
	id := records[0]["id"].(string)

	out, err = h.run("", "view", "site-visit-details", id, "--field", "follow_up_action_plan", "--ref", "a1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Fix pump")

	out, err = h.run("", "add", "site-visit-details", "--record", id, "--field", "follow_up_action_plan",
		"--set", "action=Paint rails", "--set", "responsible_person=Maint", "--set", "target_date=2026-03-20")
	require.NoError(t, err, out)
	assert.Len(t, h.records("site-visit-details", "--record", id, "--field", "follow_up_action_plan"), 2)

	out, err = h.run("n\n", "delete", "site-visit-details", id, "--field", "follow_up_action_plan", "--ref", "a1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Cancelled")

	out, err = h.run("y\n", "delete", "site-visit-details", id, "--field", "follow_up_action_plan", "--ref", "a1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted")

	items := h.records("site-visit-details", "--record", id, "--field", "follow_up_action_plan")
	require.Len(t, items, 1)
	assert.Equal(t, "Paint rails", items[0]["action"])

	out, err = h.run("", "delete", "site-visit-details", id, "--yes")
	require.NoError(t, err, out)
	assert.Empty(t, h.records("site-visit-details"))
}

func TestEditItemLegacy(t *testing.T) {
	h := newHarness(t, "admin")

	_, err := h.run("", "add", "inventory-reports", "--field", "inventory_items",
		"--set", "item_name=Bulbs", "--set", "quantity=40")
	require.NoError(t, err)

	report := h.records("inventory-reports")
	require.Len(t, report, 1)
	id := report[0]["id"].(string)
	items := h.records("inventory-reports", "--field", "inventory_items")
	require.Len(t, items, 1)
	assert.Equal(t, float64(40), items[0]["quantity"])

	out, err := h.run("", "--legacy", "edit", "inventory-reports", id,
		"--field", "inventory_items", "--ref", items[0]["id"].(string), "--set", "quantity=35")
	require.NoError(t, err, out)

	items = h.records("inventory-reports", "--field", "inventory_items")
	require.Len(t, items, 1)
	assert.Equal(t, float64(35), items[0]["quantity"])
	assert.Equal(t, "Bulbs", items[0]["item_name"])
}

func TestMissingRequiredIsReported(t *testing.T) {
	h := newHarness(t, "admin")

	_, err := h.run("", "add", "work-permits", "--set", "permit_type=hot work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested_by")
	assert.Empty(t, h.records("work-permits"))
}

func TestRoleDenied(t *testing.T) {
	h := newHarness(t, "property_user")

	_, err := h.run("", "add", "cctv-audit-reports", "--field", "cctv_audit_checklist",
		"--set", "camera_location=Gate", "--set", "status=ok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestWhoamiAndResources(t *testing.T) {
	h := newHarness(t, "property_user")

	out, err := h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"role": "property_user"`)

	out, err = h.run("", "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "site-visit-details")
	assert.Contains(t, out, "report")
}

func TestToken(t *testing.T) {
	var out bytes.Buffer
	cmd := cli.NewRootCommand(strings.NewReader(""), &out)
	cmd.SetArgs([]string{"token", "--secret", "s3cret", "--user", "u-1", "--role", "cadmin"})
	require.NoError(t, cmd.Execute())

	claims, err := auth.ParseToken("s3cret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "cadmin", claims.Role)
}
