package cloudflare_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *cloudflare.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return cloudflare.NewClient(cloudflare.Config{APIBase: srv.URL, APIToken: "token", ZoneID: "zone-1"})
}

func TestDoDecodesResultAndSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.Equal(t, "/zones/zone-1/dns_records", r.URL.Path)
		require.Equal(t, "a.orbiter.website", r.URL.Query().Get("name"))
		_, _ = io.WriteString(w, `{"success":true,"errors":[],"result":[{"id":"r1","name":"a.orbiter.website"}],"result_info":{"count":1,"total_count":1}}`)
	})

	var out []struct {
		ID string `json:"id"`
	}
	info, err := client.Do(context.Background(), "list", http.MethodGet, client.ZonePath("dns_records"),
		map[string][]string{"name": {"a.orbiter.website"}}, nil, &out)

	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "r1", out[0].ID)
	require.Equal(t, 1, info.TotalCount)
}

func TestDoReturnsAPIErrorWithProviderPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"errors":[{"code":1436,"message":"Custom hostname not found"}],"result":null}`)
	})

	_, err := client.Do(context.Background(), "delete hostname", http.MethodDelete, client.ZonePath("custom_hostnames", "h1"), nil, nil, nil)

	require.Error(t, err)
	require.True(t, cloudflare.IsNotFound(err))
	var apiErr *cloudflare.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 1436, apiErr.Errors[0].Code)
	require.Contains(t, err.Error(), "Custom hostname not found")
}

func TestDoTreatsUnsuccessfulEnvelopeAsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"errors":[{"code":9109,"message":"Invalid access token"}]}`)
	})

	_, err := client.Do(context.Background(), "create", http.MethodPost, client.ZonePath("dns_records"), nil, map[string]string{"a": "b"}, nil)

	require.Error(t, err)
	require.False(t, cloudflare.IsNotFound(err))
}
