package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/client/gateway"
	"github.com/stretchr/testify/require"
)

func TestGatewayReadsContentAndRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("x-pinata-gateway-token"))
		switch r.URL.Path {
		case "/ipfs/bafy-site":
			_, _ = w.Write([]byte("<html>hello</html>"))
		case "/ipfs/bafy-site/_redirects":
			_, _ = w.Write([]byte("/old /new 301"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := gateway.NewGatewayClient(gateway.GatewayConfig{BaseURL: srv.URL, Token: "secret"})
	ctx := context.Background()

	html, err := client.GetSiteData(ctx, "bafy-site")
	require.NoError(t, err)
	require.Equal(t, "<html>hello</html>", html)

	redirects, ok, err := client.GetRedirectsFile(ctx, "bafy-site")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/old /new 301", redirects)

	_, ok, err = client.GetRedirectsFile(ctx, "bafy-other")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = client.GetSiteData(ctx, "bafy-other")
	require.Error(t, err)
}
