package dns_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/dns"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var dnsCfg = dns.Config{PlatformDomain: "orbiter.website", EdgeTarget: "edge.workers.dev", ProxyIPs: []string{"203.0.113.10"}}

func newRecords(t *testing.T, handler http.HandlerFunc) *dns.CloudflareRecords {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := cloudflare.NewClient(cloudflare.Config{APIBase: srv.URL, APIToken: "t", ZoneID: "z"})
	return dns.NewCloudflareRecords(client, dnsCfg)
}

func TestRecordExistsQueriesFullPlatformName(t *testing.T) {
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "my-site.orbiter.website", r.URL.Query().Get("name"))
		_, _ = io.WriteString(w, `{"success":true,"result":[{"id":"1","type":"CNAME","name":"my-site.orbiter.website","content":"edge.workers.dev","proxied":true}]}`)
	})

	lookup, err := records.RecordExists(context.Background(), "my-site")

	require.NoError(t, err)
	require.True(t, lookup.Exists)
	require.Equal(t, 1, lookup.TotalRecords)
	require.Equal(t, "edge.workers.dev", lookup.Records[0].Content)
}

func TestRecordExistsSurfacesProviderErrors(t *testing.T) {
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"success":false,"errors":[{"code":10000,"message":"Authentication error"}]}`)
	})

	_, err := records.RecordExists(context.Background(), "my-site")

	require.ErrorContains(t, err, "Authentication error")
}

func TestCreatePlatformRecordSendsProxiedCNAME(t *testing.T) {
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "CNAME", body["type"])
		require.Equal(t, "my-site", body["name"])
		require.Equal(t, "edge.workers.dev", body["content"])
		require.Equal(t, true, body["proxied"])
		_, _ = io.WriteString(w, `{"success":true,"result":{"id":"new"}}`)
	})

	require.NoError(t, records.CreatePlatformRecord(context.Background(), "my-site"))
}

func TestDeletePlatformRecordPrefersExactMatch(t *testing.T) {
	var deleted atomic.Value
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "blog.orbiter.website", r.URL.Query().Get("name"))
			_, _ = io.WriteString(w, `{"success":true,"result":[{"id":"a","name":"myblog.orbiter.website"},{"id":"b","name":"blog.orbiter.website"}]}`)
		case http.MethodDelete:
			deleted.Store(r.URL.Path)
			_, _ = io.WriteString(w, `{"success":true,"result":{"id":"b"}}`)
		}
	})

	require.NoError(t, records.DeletePlatformRecord(context.Background(), "blog.orbiter.website"))
	require.True(t, strings.HasSuffix(deleted.Load().(string), "/dns_records/b"))
}

func TestDeletePlatformRecordLeavesNeighboursAlone(t *testing.T) {
	var deletes atomic.Int32
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"success":true,"result":[{"id":"other","name":"myblog.orbiter.website"}]}`)
		case http.MethodDelete:
			deletes.Add(1)
			_, _ = io.WriteString(w, `{"success":true,"result":{"id":"other"}}`)
		}
	})

	err := records.DeletePlatformRecord(context.Background(), "blog")

	require.ErrorIs(t, err, errs.ErrRecordNotFound)
	require.Zero(t, deletes.Load())
}

func TestDeletePlatformRecordReportsMissingRecord(t *testing.T) {
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"result":[]}`)
	})

	err := records.DeletePlatformRecord(context.Background(), "ghost")

	require.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestPurgeEdgeCacheNeverFails(t *testing.T) {
	records := newRecords(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	records.PurgeEdgeCache(context.Background(), "shop.example.com")
}

func TestVerifyExternalOwnershipMatchesProxyIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/dns-json", r.Header.Get("accept"))
		require.Equal(t, "A", r.URL.Query().Get("type"))
		switch r.URL.Query().Get("name") {
		case "owned.example.com":
			_, _ = io.WriteString(w, `{"Status":0,"Answer":[{"name":"owned.example.com","type":5,"data":"203.0.113.10"},{"name":"owned.example.com","type":1,"data":"203.0.113.10"}]}`)
		case "cname-only.example.com":
			_, _ = io.WriteString(w, `{"Status":0,"Answer":[{"name":"cname-only.example.com","type":5,"data":"203.0.113.10"}]}`)
		default:
			_, _ = io.WriteString(w, `{"Status":0,"Answer":[{"name":"other.example.com","type":1,"data":"198.51.100.1"}]}`)
		}
	}))
	defer srv.Close()

	cfg := dnsCfg
	cfg.DoHEndpoint = srv.URL
	resolver := dns.NewDoHResolver(cfg)

	ok, err := resolver.VerifyExternalOwnership(context.Background(), "owned.example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = resolver.VerifyExternalOwnership(context.Background(), "cname-only.example.com")
	require.NoError(t, err)
	require.False(t, ok, "only A answers count")

	ok, err = resolver.VerifyExternalOwnership(context.Background(), "other.example.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyExternalOwnershipTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := dnsCfg
	cfg.DoHEndpoint = srv.URL
	cfg.DoHTimeout = 50 * time.Millisecond

	_, err := dns.NewDoHResolver(cfg).VerifyExternalOwnership(context.Background(), "slow.example.com")
	require.Error(t, err)
}

func TestApexDomain(t *testing.T) {
	require.Equal(t, "example.com", dns.ApexDomain("shop.eu.example.com."))
	require.Equal(t, "example.com", dns.ApexDomain("example.com"))
}
