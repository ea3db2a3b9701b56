package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guggleweed/gateway/internal/app"
	"github.com/guggleweed/gateway/internal/broker"
	"github.com/guggleweed/gateway/internal/config"
	"github.com/guggleweed/gateway/internal/domain"
)

// newTestGateway wires the real router, orchestrator and broker client
// against a scripted broker HTTP server.
func newTestGateway(t *testing.T, brokerHandler http.Handler) (*httptest.Server, *app.Registry) {
	t.Helper()

	brokerSrv := httptest.NewServer(brokerHandler)
	t.Cleanup(brokerSrv.Close)

	reg := app.NewRegistry()
	orch := &app.Orchestrator{
		Registry: reg,
		Broker:   broker.NewClient(brokerSrv.URL, 2*time.Second),
	}

	cfg := &config.Config{Mode: "test"}
	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, orch))
	t.Cleanup(srv.Close)
	return srv, reg
}

func doReq(t *testing.T, method, url, user string) (*http.Response, domain.Result) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("x-username", user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res domain.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp, res
}

func TestStartMeetingRequiresIdentity(t *testing.T) {
	t.Parallel()

	srv, _ := newTestGateway(t, http.NotFoundHandler())

	resp, res := doReq(t, http.MethodPost, srv.URL+"/meetings/start", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, res.OK())
}

func TestStartEndMeetingFlow(t *testing.T) {
	t.Parallel()

	var endCalls atomic.Int64
	srv, reg := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meetings/start":
			_ = json.NewEncoder(w).Encode(domain.Ok(map[string]string{"meetingId": "m42"}))
		case "/meetings/m42/end":
			endCalls.Add(1)
			_ = json.NewEncoder(w).Encode(domain.Ok(nil))
		default:
			_ = json.NewEncoder(w).Encode(domain.Fail("unexpected call"))
		}
	}))

	_, res := doReq(t, http.MethodPost, srv.URL+"/meetings/start", "alice")
	require.True(t, res.OK())
	host, ok := reg.HostID("m42")
	require.True(t, ok)
	assert.Equal(t, domain.AttendeeID("alice"), host)

	// Host is served from the local record, not the broker.
	_, res = doReq(t, http.MethodGet, srv.URL+"/meetings/m42/hostId", "")
	require.True(t, res.OK())
	assert.JSONEq(t, `{"hostId":"alice"}`, string(res.Data))

	// Only the recorded host may end the meeting.
	_, res = doReq(t, http.MethodPost, srv.URL+"/meetings/m42/end", "bob")
	assert.False(t, res.OK())
	assert.Equal(t, int64(0), endCalls.Load())

	_, res = doReq(t, http.MethodPost, srv.URL+"/meetings/m42/end", "alice")
	require.True(t, res.OK())
	assert.Equal(t, int64(1), endCalls.Load())
	_, ok = reg.HostID("m42")
	assert.False(t, ok)
}
