package dns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	rTypes "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/route53domains"
	rdTypes "github.com/aws/aws-sdk-go-v2/service/route53domains/types"
)

// Route53Records keeps platform subdomains as plain CNAMEs in a hosted zone.
type Route53Records struct {
	client *route53.Client
	cfg    Config
}

var _ interfaces.RecordGateway = (*Route53Records)(nil)

func NewRoute53Records(awsConfig aws.Config, cfg Config) *Route53Records {
	return &Route53Records{client: route53.NewFromConfig(awsConfig), cfg: cfg}
}

func (d *Route53Records) RecordExists(ctx context.Context, name string) (*entity.RecordLookup, error) {
	started := time.Now()
	records, err := d.find(ctx, d.cfg.FQDN(name))
	metrics.ObserveProvider("route53", "list records", started, err)
	if err != nil {
		return nil, err
	}
	return &entity.RecordLookup{Exists: len(records) > 0, Records: records, TotalRecords: len(records)}, nil
}

func (d *Route53Records) find(ctx context.Context, fqdn string) ([]entity.DNSRecord, error) {
	res, err := d.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(d.cfg.HostedZoneID),
		StartRecordName: aws.String(fqdn),
		MaxItems:        aws.Int32(10),
	})
	if err != nil {
		return nil, fmt.Errorf("err listing records for %s, %w", fqdn, err)
	}

	var records []entity.DNSRecord
	for _, set := range res.ResourceRecordSets {
		setName := strings.TrimSuffix(aws.ToString(set.Name), ".")
		if !strings.EqualFold(setName, fqdn) {
			continue
		}
		for _, rr := range set.ResourceRecords {
			records = append(records, entity.DNSRecord{
				ID:      setName + "/" + string(set.Type),
				Type:    string(set.Type),
				Name:    setName,
				Content: aws.ToString(rr.Value),
			})
		}
	}
	return records, nil
}

func (d *Route53Records) CreatePlatformRecord(ctx context.Context, name string) error {
	started := time.Now()
	err := d.change(ctx, rTypes.ChangeActionCreate, d.cfg.FQDN(name), d.cfg.EdgeTarget)
	metrics.ObserveProvider("route53", "create record", started, err)
	return err
}

func (d *Route53Records) DeletePlatformRecord(ctx context.Context, name string) error {
	name = strings.TrimSuffix(strings.ToLower(name), "."+d.cfg.PlatformDomain)
	fqdn := d.cfg.FQDN(name)

	started := time.Now()
	records, err := d.find(ctx, fqdn)
	if err == nil && len(records) == 0 {
		err = fmt.Errorf("no DNS record found for subdomain %s, %w", name, errs.ErrRecordNotFound)
	}
	if err == nil {
		err = d.change(ctx, rTypes.ChangeActionDelete, fqdn, records[0].Content)
	}
	metrics.ObserveProvider("route53", "delete record", started, err)
	return err
}

func (d *Route53Records) change(ctx context.Context, action rTypes.ChangeAction, fqdn, target string) error {
	resp, err := d.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(d.cfg.HostedZoneID),
		ChangeBatch: &rTypes.ChangeBatch{
			Comment: aws.String("orbiter platform subdomain"),
			Changes: []rTypes.Change{
				{
					Action: action,
					ResourceRecordSet: &rTypes.ResourceRecordSet{
						Name:            aws.String(fqdn),
						Type:            rTypes.RRTypeCname,
						TTL:             aws.Int64(d.cfg.RecordTTL),
						ResourceRecords: []rTypes.ResourceRecord{{Value: aws.String(target)}},
					},
				},
			},
		},
	})
	if err != nil {
		var invalid *rTypes.InvalidChangeBatch
		if action == rTypes.ChangeActionDelete && errors.As(err, &invalid) {
			return fmt.Errorf("record %s already gone, %w", fqdn, errs.ErrRecordNotFound)
		}
		return fmt.Errorf("err changing record %s, %w", fqdn, err)
	}

	slog.Info("record change submitted", "action", action, "name", fqdn, "change", aws.ToString(resp.ChangeInfo.Id))
	return nil
}

// PurgeEdgeCache is a no-op; plain DNS has nothing to purge.
func (d *Route53Records) PurgeEdgeCache(_ context.Context, domain string) {
	slog.Debug("no edge cache behind route53 records", "domain", domain)
}

// Route53Registrar answers whether a domain is registered at all.
type Route53Registrar struct {
	client *route53domains.Client
}

var _ interfaces.Registrar = (*Route53Registrar)(nil)

func NewRoute53Registrar(awsConfig aws.Config) *Route53Registrar {
	domainClientCfg := awsConfig.Copy()
	domainClientCfg.Region = "us-east-1"
	return &Route53Registrar{client: route53domains.NewFromConfig(domainClientCfg)}
}

func (r *Route53Registrar) IsRegistered(ctx context.Context, domain string) (bool, error) {
	apex := ApexDomain(domain)
	started := time.Now()
	out, err := r.client.CheckDomainAvailability(ctx, &route53domains.CheckDomainAvailabilityInput{
		DomainName: aws.String(apex),
	})
	metrics.ObserveProvider("route53domains", "check availability", started, err)
	if err != nil {
		var unsupported *rdTypes.UnsupportedTLD
		if errors.As(err, &unsupported) {
			slog.Warn("registrar can't answer for tld, assuming registered", "domain", apex)
			return true, nil
		}
		return false, fmt.Errorf("err checking availability of %s, %w", apex, err)
	}
	return out.Availability != rdTypes.DomainAvailabilityAvailable &&
		out.Availability != rdTypes.DomainAvailabilityAvailableReserved &&
		out.Availability != rdTypes.DomainAvailabilityAvailablePreorder, nil
}

// ApexDomain keeps the last two labels. Multi-label public suffixes are not
// special-cased.
func ApexDomain(domain string) string {
	labels := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
