package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
)

// maxContent caps how much of a deployment is read for screening.
const maxContent = 5 << 20

// GatewayClient reads pinned site content through an IPFS gateway.
type GatewayClient struct {
	cfg    GatewayConfig
	client *http.Client
}

var _ interfaces.ContentSource = (*GatewayClient)(nil)

var errNotFound = errors.New("content not found")

func NewGatewayClient(cfg GatewayConfig) *GatewayClient {
	return &GatewayClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
	}
}

func (c *GatewayClient) GetSiteData(ctx context.Context, cid string) (string, error) {
	body, err := c.get(ctx, "get_site_data", cid, "")
	if err != nil {
		return "", fmt.Errorf("err fetching content %v, %w", cid, err)
	}
	return body, nil
}

func (c *GatewayClient) GetRedirectsFile(ctx context.Context, cid string) (string, bool, error) {
	body, err := c.get(ctx, "get_redirects", cid, "_redirects")
	if errors.Is(err, errNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("err fetching redirects for %v, %w", cid, err)
	}
	return body, true, nil
}

func (c *GatewayClient) get(ctx context.Context, op, cid, file string) (body string, err error) {
	defer func(started time.Time) {
		if errors.Is(err, errNotFound) {
			metrics.ObserveProvider("gateway", op, started, nil)
			return
		}
		metrics.ObserveProvider("gateway", op, started, err)
	}(time.Now())

	target := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/ipfs/" + url.PathEscape(cid)
	if file != "" {
		target += "/" + file
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	if c.cfg.Token != "" {
		request.Header.Set("x-pinata-gateway-token", c.cfg.Token)
	}

	resp, err := c.client.Do(request)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errNotFound
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContent))
	if err != nil {
		return "", err
	}
	slog.Debug("content fetched", "cid", cid, "file", file, "bytes", len(data))
	return string(data), nil
}
