package diagnostics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/connection"
	"github.com/simplyprint/ws-client/connmanager"
	"github.com/simplyprint/ws-client/printerconfig"
)

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	store, err := NewStore(t.TempDir(), 5)
	require.NoError(t, err)

	mgr := connmanager.New(connection.ModeSingle, "host", "0.2", nil)
	cl := client.New(printerconfig.New(), nil)
	clients := func() []*client.Client { return []*client.Client{cl} }

	return NewServer("", store, mgr, clients, nil), store
}

func TestServerStatus(t *testing.T) {
	s, _ := newTestServer(t)
	server := httptest.NewServer(s.engine)
	defer server.Close()

	e := httpexpect.Default(t, server.URL)
	list := e.GET("/status").
		Expect().
		Status(http.StatusOK).JSON().Object().Value("clients").Array()

	list.Length().IsEqual(1)
	list.Value(0).Object().Value("state").IsEqual("CONNECTING")
}

func TestServerReportLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	server := httptest.NewServer(s.engine)
	defer server.Close()

	e := httpexpect.Default(t, server.URL)

	e.GET("/reports").
		Expect().
		Status(http.StatusOK).JSON().Object().Value("reports").Array().IsEmpty()

	run := e.POST("/reports/run").
		Expect().
		Status(http.StatusOK).JSON().Object()
	run.Value("path").String().NotEmpty()

	reports := e.GET("/reports").
		Expect().
		Status(http.StatusOK).JSON().Object().Value("reports").Array()
	reports.Length().IsEqual(1)

	name := reports.Value(0).String().Raw()
	e.GET("/reports/" + name).
		Expect().
		Status(http.StatusOK).JSON().Object().Value("generated_at").String().NotEmpty()
}

func TestServerGetMissingReport(t *testing.T) {
	s, _ := newTestServer(t)
	server := httptest.NewServer(s.engine)
	defer server.Close()

	httpexpect.Default(t, server.URL).
		GET("/reports/does_not_exist.json").
		Expect().
		Status(http.StatusNotFound)
}
