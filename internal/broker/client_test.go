package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guggleweed/gateway/internal/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second), srv
}

func TestClientCarriesIdentityHeader(t *testing.T) {
	t.Parallel()

	var gotPath, gotUser string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.Header.Get("x-username")
		_ = json.NewEncoder(w).Encode(domain.Ok(nil))
	}))
	defer srv.Close()

	res := c.JoinMeeting(context.Background(), "m1", "bob")

	require.True(t, res.OK())
	assert.Equal(t, "/meetings/m1/join", gotPath)
	assert.Equal(t, "bob", gotUser)
}

func TestClientSendsOperationPayload(t *testing.T) {
	t.Parallel()

	var gotBody map[string]json.RawMessage
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(domain.Ok(nil))
	}))
	defer srv.Close()

	res := c.ConnectTransport(context.Background(), "m1", "bob", "send", json.RawMessage(`{"role":"client"}`))

	require.True(t, res.OK())
	assert.JSONEq(t, `"send"`, string(gotBody["transportType"]))
	assert.JSONEq(t, `{"role":"client"}`, string(gotBody["dtlsParameters"]))
}

func TestClientFoldsBrokerRejection(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.Fail("meeting not found"))
	}))
	defer srv.Close()

	res := c.MeetingInfo(context.Background(), "ghost")

	assert.False(t, res.OK())
	assert.Equal(t, "meeting not found", res.Message)
}

func TestClientFoldsNonEnvelopeResponse(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := c.EndMeeting(context.Background(), "m1", "alice")
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Message)
}

func TestClientFoldsNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(srv.URL, 2*time.Second)
	srv.Close()

	res := c.StartMeeting(context.Background(), "alice")
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Message)
}

func TestClientPassesThroughSuccessData(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/meetings/start", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.Ok(map[string]string{"meetingId": "m42"}))
	}))
	defer srv.Close()

	res := c.StartMeeting(context.Background(), "alice")

	require.True(t, res.OK())
	assert.JSONEq(t, `{"meetingId":"m42"}`, string(res.Data))
}
