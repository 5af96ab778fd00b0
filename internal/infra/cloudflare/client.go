// Package cloudflare is a small client for the Cloudflare v4 REST API. Every
// call goes through a circuit breaker and decodes the standard envelope into
// an explicit result type.
package cloudflare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Errors     []Error         `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *ResultInfo     `json:"result_info,omitempty"`
}

// APIError carries the provider payload of a non-success response.
type APIError struct {
	Operation string
	Status    int
	Errors    []Error
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, pe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%d: %s", pe.Code, pe.Message))
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "Unknown error")
	}
	return fmt.Sprintf("cloudflare %s failed with status %d, %s", e.Operation, e.Status, strings.Join(msgs, "; "))
}

func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

type rawResponse struct {
	status int
	body   []byte
}

// serverError marks 5xx responses so the breaker counts them.
type serverError struct {
	status int
}

func (e serverError) Error() string {
	return fmt.Sprintf("server responded with %d", e.status)
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*rawResponse]
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: NewBreaker[*rawResponse]("cloudflare-api", func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
	}
}

func (c *Client) Config() Config {
	return c.cfg
}

// ZonePath joins parts under the configured zone.
func (c *Client) ZonePath(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "zones", url.PathEscape(c.cfg.ZoneID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}

// Do issues the request and decodes envelope.result into out when out is not
// nil. A non-success envelope or status is returned as *APIError.
func (c *Client) Do(ctx context.Context, operation, method, path string, query url.Values, body, out any) (*ResultInfo, error) {
	started := time.Now()
	info, err := c.do(ctx, operation, method, path, query, body, out)
	metrics.ObserveProvider("cloudflare", operation, started, err)
	return info, err
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) (*ResultInfo, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("err marshalling %s request, %w", operation, err)
		}
	}

	target := strings.TrimRight(c.cfg.APIBase, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.breaker.Execute(func() (*rawResponse, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = res.Body.Close()
		}()
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}
		raw := &rawResponse{status: res.StatusCode, body: data}
		if res.StatusCode >= http.StatusInternalServerError {
			return raw, serverError{status: res.StatusCode}
		}
		return raw, nil
	})
	if err != nil && resp == nil {
		return nil, fmt.Errorf("err calling cloudflare %s, %w", operation, err)
	}

	var env envelope
	if len(resp.body) > 0 {
		if decodeErr := json.Unmarshal(resp.body, &env); decodeErr != nil {
			if err != nil {
				return nil, &APIError{Operation: operation, Status: resp.status}
			}
			return nil, fmt.Errorf("err decoding cloudflare %s response, %w", operation, decodeErr)
		}
	}

	if resp.status >= http.StatusBadRequest || (len(resp.body) > 0 && !env.Success) {
		return nil, &APIError{Operation: operation, Status: resp.status, Errors: env.Errors}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return nil, fmt.Errorf("err decoding cloudflare %s result, %w", operation, err)
		}
	}
	return env.ResultInfo, nil
}
