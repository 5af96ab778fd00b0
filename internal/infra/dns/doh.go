package dns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

const typeA = 1

type dohAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

type dohResponse struct {
	Status int         `json:"Status"`
	Answer []dohAnswer `json:"Answer"`
}

// DoHResolver proves ownership of an external domain by checking that its A
// records point at one of the platform proxy addresses.
type DoHResolver struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]dohAnswer]
}

var _ interfaces.OwnershipVerifier = (*DoHResolver)(nil)

func NewDoHResolver(cfg Config) *DoHResolver {
	if cfg.DoHTimeout <= 0 {
		cfg.DoHTimeout = 5 * time.Second
	}
	return &DoHResolver{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.DoHTimeout},
		breaker: cloudflare.NewBreaker[[]dohAnswer]("dns-over-https", func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
	}
}

func (r *DoHResolver) VerifyExternalOwnership(ctx context.Context, domain string) (bool, error) {
	if len(r.cfg.ProxyIPs) == 0 {
		return false, fmt.Errorf("no proxy ips configured for ownership checks")
	}

	started := time.Now()
	answers, err := r.breaker.Execute(func() ([]dohAnswer, error) {
		return r.queryA(ctx, domain)
	})
	metrics.ObserveProvider("doh", "query a", started, err)
	if err != nil {
		return false, fmt.Errorf("err resolving %s, %w", domain, err)
	}

	for _, a := range answers {
		if a.Type == typeA && slices.Contains(r.cfg.ProxyIPs, a.Data) {
			return true, nil
		}
	}
	return false, nil
}

func (r *DoHResolver) queryA(ctx context.Context, domain string) ([]dohAnswer, error) {
	target := r.cfg.DoHEndpoint + "?" + url.Values{"name": {domain}, "type": {"A"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/dns-json")

	res, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolver responded with %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var parsed dohResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("err decoding resolver response, %w", err)
	}
	return parsed.Answer, nil
}
