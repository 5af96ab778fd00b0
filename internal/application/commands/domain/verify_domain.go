package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
)

type VerifyDomain struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	roles      Authorizer
	mappings   interfaces.MappingStore
	hostnames  interfaces.HostnameGateway
	verifier   interfaces.OwnershipVerifier
	now        func() time.Time
}

func NewVerifyDomain(
	cfg Config, factory *dbs.UOWFactory, roles Authorizer, mappings interfaces.MappingStore,
	hostnames interfaces.HostnameGateway, verifier interfaces.OwnershipVerifier,
) *VerifyDomain {
	return &VerifyDomain{
		cfg:        cfg,
		uowFactory: factory,
		roles:      roles,
		mappings:   mappings,
		hostnames:  hostnames,
		verifier:   verifier,
		now:        time.Now,
	}
}

func active() *entity.Verification {
	return &entity.Verification{Verified: true, IsVerified: true, SSLIssued: true, SSLStatus: consts.SSLStatusActive}
}

// Execute is polled by clients. Pending certificates leave every record
// untouched and an active domain is only re-checked per the configured policy.
func (c *VerifyDomain) Execute(ctx context.Context, siteID uuid.UUID, req dto.CustomDomainRequest, identity *auth.Identity) (*entity.Verification, error) {
	if err := c.roles.Authorize(identity, consts.ActionManageCustomDomain); err != nil {
		return nil, err
	}
	domain, err := NormalizeDomain(req.CustomDomain, c.cfg.PlatformDomain)
	if err != nil {
		return nil, err
	}
	site, err := LoadOwnedSite(ctx, c.uowFactory, siteID, identity)
	if err != nil {
		return nil, err
	}
	if site.CustomDomainValue() != domain {
		return nil, errs.NewValidationError("Custom domain not found for this site")
	}

	if entity.DomainState(site) == consts.StateActive {
		return c.recheck(ctx, site)
	}

	mapping, err := c.mappings.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, errs.StateError{Err: fmt.Errorf("no mapping for %s, remove and re-add the domain", domain)}
	}
	if mapping.HostnameID == "" {
		return &entity.Verification{}, nil
	}

	ok, err := c.hostnames.PollSSLValidation(ctx, mapping.HostnameID)
	var sslErr errs.SSLValidationError
	if errors.As(err, &sslErr) {
		mapping.MarkChecked(consts.SSLStatusFailed, c.now())
		if putErr := c.mappings.Put(ctx, mapping); putErr != nil {
			slog.Error("err recording failed ssl status", "domain", domain, "err", putErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return &entity.Verification{SSLIssued: true}, nil
	}
	if c.cfg.Recheck == consts.RecheckDNS && site.SSLIssued && !site.DomainOwnershipVerified {
		// demoted by a failed dns re-check, stays demoted until the domain points back
		owned, err := c.verifier.VerifyExternalOwnership(ctx, domain)
		if err != nil {
			return nil, err
		}
		if !owned {
			return &entity.Verification{SSLIssued: true}, nil
		}
	}

	mapping.MarkChecked(consts.SSLStatusActive, c.now())
	if err := c.mappings.Put(ctx, mapping); err != nil {
		return nil, err
	}
	if err := c.setFlags(ctx, site.ID, true, true); err != nil {
		return nil, err
	}
	metrics.Transition(string(entity.DomainState(site)), string(consts.StateActive))
	slog.Info("custom domain active", "domain", domain, "site", site.ID)
	return active(), nil
}

func (c *VerifyDomain) recheck(ctx context.Context, site *entity.Site) (*entity.Verification, error) {
	domain := site.CustomDomainValue()
	switch c.cfg.Recheck {
	case consts.RecheckHostname:
		mapping, err := c.mappings.Get(ctx, domain)
		if err != nil {
			return nil, err
		}
		if mapping == nil || mapping.HostnameID == "" {
			return nil, errs.StateError{Err: fmt.Errorf("active domain %s has no hostname on record, remove and re-add the domain", domain)}
		}
		status, err := c.hostnames.GetHostnameStatus(ctx, mapping.HostnameID)
		if err != nil {
			return nil, err
		}
		if status.SSL.Status == consts.SSLStatusActive {
			return active(), nil
		}
		mapping.MarkChecked(status.SSL.Status, c.now())
		if err := c.mappings.Put(ctx, mapping); err != nil {
			return nil, err
		}
		if err := c.setFlags(ctx, site.ID, true, false); err != nil {
			return nil, err
		}
		metrics.Transition(string(consts.StateActive), string(consts.StateOwnershipVerified))
		slog.Warn("certificate no longer active", "domain", domain, "ssl", status.SSL.Status)
		return &entity.Verification{IsVerified: true, SSLStatus: status.SSL.Status}, nil
	case consts.RecheckDNS:
		owned, err := c.verifier.VerifyExternalOwnership(ctx, domain)
		if err != nil {
			return nil, err
		}
		if owned {
			return active(), nil
		}
		if err := c.setFlags(ctx, site.ID, false, site.SSLIssued); err != nil {
			return nil, err
		}
		metrics.Transition(string(consts.StateActive), string(consts.StateRequested))
		slog.Warn("domain no longer points at the platform", "domain", domain)
		return &entity.Verification{SSLIssued: site.SSLIssued}, nil
	default:
		return active(), nil
	}
}

func (c *VerifyDomain) setFlags(ctx context.Context, siteID uuid.UUID, verified, sslIssued bool) (err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	return repo.NewSiteRepo(tx).SetDomainVerification(ctx, siteID, verified, sslIssued)
}
