package certs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
)

// CloudflareHostnames provisions customer domains through Cloudflare for SaaS.
type CloudflareHostnames struct {
	client *cloudflare.Client
	cfg    Config
}

var _ interfaces.HostnameGateway = (*CloudflareHostnames)(nil)

func NewCloudflareHostnames(client *cloudflare.Client, cfg Config) *CloudflareHostnames {
	return &CloudflareHostnames{client: client, cfg: cfg}
}

type sslSettings struct {
	MinTLSVersion string `json:"min_tls_version"`
}

type sslRequest struct {
	Method   string      `json:"method"`
	Type     string      `json:"type"`
	Settings sslSettings `json:"settings"`
}

type createHostnameRequest struct {
	Hostname string     `json:"hostname"`
	SSL      sslRequest `json:"ssl"`
}

type validationError struct {
	Message string `json:"message"`
}

type hostnameResult struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	Status   string `json:"status"`
	SSL      struct {
		Status           string            `json:"status"`
		ValidationErrors []validationError `json:"validation_errors"`
	} `json:"ssl"`
}

func (r hostnameResult) toEntity() *entity.CustomHostname {
	details := make([]string, 0, len(r.SSL.ValidationErrors))
	for _, v := range r.SSL.ValidationErrors {
		details = append(details, v.Message)
	}
	return &entity.CustomHostname{
		ID:       r.ID,
		Hostname: r.Hostname,
		Status:   r.Status,
		SSL: entity.SSLState{
			Status:           consts.SSLStatus(r.SSL.Status),
			ValidationErrors: details,
		},
	}
}

type createRouteRequest struct {
	Pattern string `json:"pattern"`
	Script  string `json:"script"`
}

func (h *CloudflareHostnames) Type() consts.ProvisioningType {
	return consts.ProvisioningCloudflareSaaS
}

func (h *CloudflareHostnames) CreateCustomHostname(ctx context.Context, domain string) (*entity.CustomHostname, error) {
	req := createHostnameRequest{
		Hostname: domain,
		SSL: sslRequest{
			Method:   "http",
			Type:     "dv",
			Settings: sslSettings{MinTLSVersion: h.cfg.MinTLSVersion},
		},
	}
	var res hostnameResult
	if _, err := h.client.Do(ctx, "create custom hostname", http.MethodPost, h.client.ZonePath("custom_hostnames"), nil, req, &res); err != nil {
		return nil, err
	}
	slog.Info("created custom hostname", "domain", domain, "id", res.ID, "ssl", res.SSL.Status)
	return res.toEntity(), nil
}

func (h *CloudflareHostnames) CreateWorkerRoute(ctx context.Context, domain string) (*entity.WorkerRoute, error) {
	var route entity.WorkerRoute
	req := createRouteRequest{Pattern: domain + "/*", Script: h.cfg.WorkerScript}
	if _, err := h.client.Do(ctx, "create worker route", http.MethodPost, h.client.ZonePath("workers", "routes"), nil, req, &route); err != nil {
		return nil, err
	}
	if route.Pattern == "" {
		route.Pattern = req.Pattern
	}
	return &route, nil
}

func (h *CloudflareHostnames) GetHostnameStatus(ctx context.Context, hostnameID string) (*entity.CustomHostname, error) {
	var res hostnameResult
	if _, err := h.client.Do(ctx, "get custom hostname", http.MethodGet, h.client.ZonePath("custom_hostnames", hostnameID), nil, nil, &res); err != nil {
		if cloudflare.IsNotFound(err) {
			return nil, fmt.Errorf("custom hostname %s, %w", hostnameID, errs.ErrResourceNotFound)
		}
		return nil, err
	}
	return res.toEntity(), nil
}

func (h *CloudflareHostnames) PollSSLValidation(ctx context.Context, hostnameID string) (bool, error) {
	status, err := h.GetHostnameStatus(ctx, hostnameID)
	if err != nil {
		return false, err
	}
	return sslOutcome(hostnameID, status.SSL)
}

func (h *CloudflareHostnames) DeleteCustomHostname(ctx context.Context, hostnameID string) error {
	_, err := h.client.Do(ctx, "delete custom hostname", http.MethodDelete, h.client.ZonePath("custom_hostnames", hostnameID), nil, nil, nil)
	if cloudflare.IsNotFound(err) {
		return fmt.Errorf("custom hostname %s, %w", hostnameID, errs.ErrResourceNotFound)
	}
	return err
}

func (h *CloudflareHostnames) DeleteWorkerRoute(ctx context.Context, routeID string) error {
	_, err := h.client.Do(ctx, "delete worker route", http.MethodDelete, h.client.ZonePath("workers", "routes", routeID), nil, nil, nil)
	if cloudflare.IsNotFound(err) {
		return fmt.Errorf("worker route %s, %w", routeID, errs.ErrResourceNotFound)
	}
	return err
}

// sslOutcome maps a provider SSL state onto the poll contract.
func sslOutcome(hostnameID string, ssl entity.SSLState) (bool, error) {
	switch ssl.Status {
	case consts.SSLStatusActive:
		return true, nil
	case consts.SSLStatusFailed:
		return false, errs.SSLValidationError{HostnameID: hostnameID, Details: ssl.ValidationErrors}
	default:
		return false, nil
	}
}
