package certs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmTypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cfTypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
)

// ACMHostnames is the AWS rendition of the hostname gateway: ACM issues the
// certificate and an alias on the platform distribution acts as the route.
type ACMHostnames struct {
	acm *acm.Client
	cf  *cloudfront.Client
	cfg Config
}

var _ interfaces.HostnameGateway = (*ACMHostnames)(nil)

func NewACMHostnames(awsConfig aws.Config, cfg Config) *ACMHostnames {
	return &ACMHostnames{
		acm: acm.NewFromConfig(awsConfig, func(o *acm.Options) {
			o.Region = cfg.ACMRegion
		}),
		cf:  cloudfront.NewFromConfig(awsConfig),
		cfg: cfg,
	}
}

func (a *ACMHostnames) Type() consts.ProvisioningType {
	return consts.ProvisioningAWSACM
}

func (a *ACMHostnames) CreateCustomHostname(ctx context.Context, domain string) (*entity.CustomHostname, error) {
	started := time.Now()
	res, err := a.acm.RequestCertificate(ctx, &acm.RequestCertificateInput{
		DomainName:       aws.String(domain),
		ValidationMethod: acmTypes.ValidationMethodDns,
		IdempotencyToken: aws.String(idempotencyToken(domain)),
	})
	metrics.ObserveProvider("acm", "request certificate", started, err)
	if err != nil {
		return nil, fmt.Errorf("err requesting certificate for %s, %w", domain, err)
	}

	arn := aws.ToString(res.CertificateArn)
	slog.Info("requested certificate", "domain", domain, "arn", arn)
	return &entity.CustomHostname{
		ID:       arn,
		Hostname: domain,
		Status:   string(acmTypes.CertificateStatusPendingValidation),
		SSL:      entity.SSLState{Status: consts.SSLStatusPendingValidation},
	}, nil
}

func (a *ACMHostnames) CreateWorkerRoute(ctx context.Context, domain string) (*entity.WorkerRoute, error) {
	err := a.updateAliases(ctx, func(aliases []string) ([]string, error) {
		if slices.Contains(aliases, domain) {
			return aliases, nil
		}
		return append(aliases, domain), nil
	})
	if err != nil {
		return nil, err
	}
	return &entity.WorkerRoute{ID: a.cfg.DistributionID + "/" + domain, Pattern: domain + "/*"}, nil
}

func (a *ACMHostnames) GetHostnameStatus(ctx context.Context, hostnameID string) (*entity.CustomHostname, error) {
	started := time.Now()
	res, err := a.acm.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(hostnameID)})
	metrics.ObserveProvider("acm", "describe certificate", started, err)
	if err != nil {
		var notFound *acmTypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("certificate %s, %w", hostnameID, errs.ErrResourceNotFound)
		}
		return nil, err
	}

	cert := res.Certificate
	for _, opt := range cert.DomainValidationOptions {
		if opt.ResourceRecord != nil && cert.Status == acmTypes.CertificateStatusPendingValidation {
			slog.Info("certificate awaiting validation record", "domain", aws.ToString(opt.DomainName),
				"name", aws.ToString(opt.ResourceRecord.Name), "value", aws.ToString(opt.ResourceRecord.Value))
		}
	}

	return &entity.CustomHostname{
		ID:       hostnameID,
		Hostname: aws.ToString(cert.DomainName),
		Status:   string(cert.Status),
		SSL:      sslStateFromACM(cert.Status, cert.FailureReason),
	}, nil
}

func (a *ACMHostnames) PollSSLValidation(ctx context.Context, hostnameID string) (bool, error) {
	status, err := a.GetHostnameStatus(ctx, hostnameID)
	if err != nil {
		return false, err
	}
	return sslOutcome(hostnameID, status.SSL)
}

func (a *ACMHostnames) DeleteCustomHostname(ctx context.Context, hostnameID string) error {
	started := time.Now()
	_, err := a.acm.DeleteCertificate(ctx, &acm.DeleteCertificateInput{CertificateArn: aws.String(hostnameID)})
	metrics.ObserveProvider("acm", "delete certificate", started, err)
	var notFound *acmTypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("certificate %s, %w", hostnameID, errs.ErrResourceNotFound)
	}
	return err
}

func (a *ACMHostnames) DeleteWorkerRoute(ctx context.Context, routeID string) error {
	distributionID, domain, ok := strings.Cut(routeID, "/")
	if !ok || distributionID != a.cfg.DistributionID {
		return fmt.Errorf("route %s does not belong to distribution %s, %w", routeID, a.cfg.DistributionID, errs.ErrResourceNotFound)
	}

	return a.updateAliases(ctx, func(aliases []string) ([]string, error) {
		idx := slices.Index(aliases, domain)
		if idx < 0 {
			return nil, fmt.Errorf("alias %s, %w", domain, errs.ErrResourceNotFound)
		}
		return slices.Delete(aliases, idx, idx+1), nil
	})
}

// updateAliases runs a read-modify-write of the distribution aliases guarded
// by the config ETag.
func (a *ACMHostnames) updateAliases(ctx context.Context, change func([]string) ([]string, error)) error {
	started := time.Now()
	current, err := a.cf.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{Id: aws.String(a.cfg.DistributionID)})
	metrics.ObserveProvider("cloudfront", "get distribution config", started, err)
	if err != nil {
		var missing *cfTypes.NoSuchDistribution
		if errors.As(err, &missing) {
			return fmt.Errorf("distribution %s, %w", a.cfg.DistributionID, errs.ErrResourceNotFound)
		}
		return err
	}

	distCfg := current.DistributionConfig
	var existing []string
	if distCfg.Aliases != nil {
		existing = slices.Clone(distCfg.Aliases.Items)
	}
	updated, err := change(existing)
	if err != nil {
		return err
	}
	if slices.Equal(existing, updated) {
		return nil
	}
	distCfg.Aliases = &cfTypes.Aliases{
		Quantity: aws.Int32(int32(len(updated))),
		Items:    updated,
	}

	started = time.Now()
	_, err = a.cf.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
		Id:                 aws.String(a.cfg.DistributionID),
		IfMatch:            current.ETag,
		DistributionConfig: distCfg,
	})
	metrics.ObserveProvider("cloudfront", "update distribution", started, err)
	if err != nil {
		return fmt.Errorf("err updating aliases of %s, %w", a.cfg.DistributionID, err)
	}
	return nil
}

func sslStateFromACM(status acmTypes.CertificateStatus, reason acmTypes.FailureReason) entity.SSLState {
	switch status {
	case acmTypes.CertificateStatusIssued:
		return entity.SSLState{Status: consts.SSLStatusActive}
	case acmTypes.CertificateStatusFailed, acmTypes.CertificateStatusValidationTimedOut, acmTypes.CertificateStatusRevoked:
		state := entity.SSLState{Status: consts.SSLStatusFailed}
		if reason != "" {
			state.ValidationErrors = []string{string(reason)}
		} else {
			state.ValidationErrors = []string{string(status)}
		}
		return state
	case acmTypes.CertificateStatusPendingValidation:
		return entity.SSLState{Status: consts.SSLStatusPendingValidation}
	default:
		return entity.SSLState{Status: consts.SSLStatusInitializing}
	}
}

// idempotencyToken is at most 32 alphanumeric characters.
func idempotencyToken(domain string) string {
	sum := sha256.Sum256([]byte(domain))
	return hex.EncodeToString(sum[:])[:32]
}
