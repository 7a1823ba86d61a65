package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/localnerve/backoffice-propsdb/internal/testutil"
	"github.com/localnerve/backoffice-propsdb/pkg/client"
	"github.com/stretchr/testify/require"
)

// countingTransport counts the requests that reach the network
type countingTransport struct {
	n int64
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt64(&c.n, 1)
	return http.DefaultTransport.RoundTrip(r)
}

func (c *countingTransport) count() int64 {
	return atomic.LoadInt64(&c.n)
}

type env struct {
	t        *testing.T
	app      *testutil.App
	url      string
	requests *countingTransport
}

func newEnv(t *testing.T) *env {
	t.Helper()

	app := testutil.NewApp(t)
	srv := httptest.NewServer(adaptor.FiberApp(app.App))
	t.Cleanup(srv.Close)

	return &env{t: t, app: app, url: srv.URL, requests: &countingTransport{}}
}

func (e *env) client(role string) *client.Client {
	e.t.Helper()
	token := testutil.Token(e.t, "user-"+role, role)
	return client.NewClient(e.url, token, client.WithHTTPClient(&http.Client{Transport: e.requests}))
}

func (e *env) page(role, resource string, opts ...client.PageOption) *client.Page {
	e.t.Helper()
	p := client.NewPage(e.client(role), resource, testutil.PropertyID, opts...)
	require.NoError(e.t, p.Load(context.Background()))
	return p
}

func siteVisit() client.Record {
	return client.Record{
		"visit_date": "2026-03-01",
		"visited_by": "R. Iyer",
		"follow_up_action_plan": []interface{}{
			map[string]interface{}{"id": "a1", "action": "Fix pump", "responsible_person": "Ops", "target_date": "2026-03-10"},
			map[string]interface{}{"id": "a2", "action": "Paint rails", "responsible_person": "Maint", "target_date": "2026-03-20"},
		},
	}
}

// createSiteVisit submits one site visit through the page and returns its id
func createSiteVisit(t *testing.T, p *client.Page) string {
	t.Helper()
	require.NoError(t, p.OpenCreate())
	for k, v := range siteVisit() {
		require.NoError(t, p.SetValue(k, v))
	}
	require.NoError(t, p.Submit(context.Background()))
	require.Len(t, p.Records(), 1)
	return p.Records()[0].ID()
}
