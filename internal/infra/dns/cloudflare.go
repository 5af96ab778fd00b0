package dns

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
)

type CloudflareRecords struct {
	client *cloudflare.Client
	cfg    Config
}

var _ interfaces.RecordGateway = (*CloudflareRecords)(nil)

func NewCloudflareRecords(client *cloudflare.Client, cfg Config) *CloudflareRecords {
	return &CloudflareRecords{client: client, cfg: cfg}
}

type createRecordRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

type purgeRequest struct {
	Hosts []string `json:"hosts"`
}

func (d *CloudflareRecords) RecordExists(ctx context.Context, name string) (*entity.RecordLookup, error) {
	var records []entity.DNSRecord
	_, err := d.client.Do(ctx, "list dns records", http.MethodGet, d.client.ZonePath("dns_records"),
		url.Values{"name": {d.cfg.FQDN(name)}}, nil, &records)
	if err != nil {
		return nil, err
	}

	return &entity.RecordLookup{
		Exists:       len(records) > 0,
		Records:      records,
		TotalRecords: len(records),
	}, nil
}

func (d *CloudflareRecords) CreatePlatformRecord(ctx context.Context, name string) error {
	var created entity.DNSRecord
	_, err := d.client.Do(ctx, "create dns record", http.MethodPost, d.client.ZonePath("dns_records"), nil,
		createRecordRequest{Type: "CNAME", Name: name, Content: d.cfg.EdgeTarget, Proxied: true, TTL: 1}, &created)
	if err != nil {
		return err
	}
	slog.Info("created platform record", "name", name, "id", created.ID)
	return nil
}

func (d *CloudflareRecords) DeletePlatformRecord(ctx context.Context, name string) error {
	name = strings.TrimSuffix(strings.ToLower(name), "."+d.cfg.PlatformDomain)
	fqdn := d.cfg.FQDN(name)

	var records []entity.DNSRecord
	_, err := d.client.Do(ctx, "find dns record", http.MethodGet, d.client.ZonePath("dns_records"),
		url.Values{"name": {fqdn}}, nil, &records)
	if err != nil {
		return err
	}

	// only ever touch the record for this exact name, neighbours may belong to other orgs
	var target *entity.DNSRecord
	for i := range records {
		if strings.EqualFold(strings.TrimSuffix(records[i].Name, "."), fqdn) {
			target = &records[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no DNS record found for subdomain %s, %w", name, errs.ErrRecordNotFound)
	}

	_, err = d.client.Do(ctx, "delete dns record", http.MethodDelete, d.client.ZonePath("dns_records", target.ID), nil, nil, nil)
	if err != nil {
		if cloudflare.IsNotFound(err) {
			return fmt.Errorf("dns record %s vanished, %w", target.ID, errs.ErrRecordNotFound)
		}
		return err
	}
	slog.Info("deleted platform record", "name", target.Name, "id", target.ID)
	return nil
}

func (d *CloudflareRecords) PurgeEdgeCache(ctx context.Context, domain string) {
	_, err := d.client.Do(ctx, "purge cache", http.MethodPost, d.client.ZonePath("purge_cache"), nil,
		purgeRequest{Hosts: []string{domain}}, nil)
	if err != nil {
		slog.Warn("err purging edge cache", "domain", domain, "err", err)
	}
}
