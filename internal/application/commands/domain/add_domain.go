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
	"golang.org/x/sync/singleflight"
)

type AddDomain struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	roles      Authorizer
	plans      interfaces.PlanSource
	registrar  interfaces.Registrar
	mappings   interfaces.MappingStore
	hostnames  interfaces.HostnameGateway
	group      singleflight.Group
}

func NewAddDomain(
	cfg Config, factory *dbs.UOWFactory, roles Authorizer, plans interfaces.PlanSource, registrar interfaces.Registrar,
	mappings interfaces.MappingStore, hostnames interfaces.HostnameGateway,
) *AddDomain {
	return &AddDomain{
		cfg:        cfg,
		uowFactory: factory,
		roles:      roles,
		plans:      plans,
		registrar:  registrar,
		mappings:   mappings,
		hostnames:  hostnames,
	}
}

// Execute attaches req.CustomDomain to the site and returns the record the
// tenant has to publish. Repeating the call for a domain the organization
// already holds returns the same instructions and resumes any step an
// earlier call did not finish.
func (c *AddDomain) Execute(ctx context.Context, siteID uuid.UUID, req dto.CustomDomainRequest, identity *auth.Identity) (*entity.DNSInstructions, error) {
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
	if site.HasCustomDomain() && site.CustomDomainValue() != domain {
		return nil, errs.NewValidationError("Site already has a custom domain, remove it first")
	}

	plan, err := c.plans.GetPlan(ctx, site.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("err resolving plan, %w", err)
	}
	if plan == consts.PlanFree {
		return nil, errs.EntitlementError{Reason: "Custom domains are not available on the free plan"}
	}

	if c.cfg.RegistrationCheck && c.registrar != nil {
		registered, err := c.registrar.IsRegistered(ctx, domain)
		if err != nil {
			return nil, err
		}
		if !registered {
			return nil, errs.NewValidationError("Domain is not registered")
		}
	}

	// joined callers share this run, so one of them hanging up must not cancel it
	shareable := context.WithoutCancel(ctx)
	res, err, shared := c.group.Do(site.ID.String()+"|"+domain, func() (any, error) {
		return c.provision(shareable, site, domain)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("joined in-flight add domain", "domain", domain, "site", site.ID)
	}
	return res.(*entity.DNSInstructions), nil
}

func (c *AddDomain) provision(ctx context.Context, site *entity.Site, domain string) (resp *entity.DNSInstructions, err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)
	sites := repo.NewSiteRepo(tx)

	owners, err := sites.GetSitesByCustomDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	mapping, err := c.mappings.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	if err = checkOwnership(site, owners, mapping); err != nil {
		return nil, err
	}
	if heldByOtherSite(site, owners, mapping) {
		slog.Info("domain already attached to another site of the organization", "domain", domain, "site", site.ID)
		return instructions(c.cfg, domain), nil
	}

	if mapping == nil {
		mapping, err = c.claim(ctx, site, domain)
		if err != nil {
			return nil, err
		}
		if heldByOtherSite(site, nil, mapping) {
			return instructions(c.cfg, domain), nil
		}
	}

	if site.CustomDomainValue() != domain {
		if err = sites.SetCustomDomain(ctx, site.ID, domain); err != nil {
			return nil, err
		}
		metrics.Transition(string(consts.StateNoCustomDomain), string(consts.StateRequested))
	}

	if mapping.HostnameID == "" {
		host, err := c.hostnames.CreateCustomHostname(ctx, domain)
		if err != nil {
			return nil, err
		}
		mapping.HostnameID = host.ID
		mapping.SSLStatus = host.SSL.Status
		if err = c.mappings.Put(ctx, mapping); err != nil {
			return nil, err
		}
	}
	if mapping.WorkerRouteID == "" {
		route, err := c.hostnames.CreateWorkerRoute(ctx, domain)
		if err != nil {
			return nil, err
		}
		mapping.WorkerRouteID = route.ID
		if err = c.mappings.Put(ctx, mapping); err != nil {
			return nil, err
		}
	}

	slog.Info("custom domain requested", "domain", domain, "site", site.ID, "hostname", mapping.HostnameID, "route", mapping.WorkerRouteID)
	return instructions(c.cfg, domain), nil
}

// claim creates the mapping with a conditional write. Losing the race means
// reading the winner's record and applying the ownership rules to it.
func (c *AddDomain) claim(ctx context.Context, site *entity.Site, domain string) (*entity.DomainMapping, error) {
	mapping := &entity.DomainMapping{
		Domain:         domain,
		Subdomain:      site.Subdomain(c.cfg.PlatformDomain),
		SiteID:         site.ID,
		OrganizationID: site.OrganizationID,
		Created:        time.Now().UTC(),
		Type:           c.hostnames.Type(),
	}
	err := c.mappings.Create(ctx, mapping)
	if err == nil {
		return mapping, nil
	}
	if !errors.Is(err, errs.ErrMappingExists) {
		return nil, err
	}

	existing, err := c.mappings.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("mapping for %s was removed while claiming it, retry the request", domain)
	}
	if err := checkOwnership(site, nil, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func checkOwnership(site *entity.Site, owners []entity.Site, mapping *entity.DomainMapping) error {
	for _, owner := range owners {
		if owner.OrganizationID != site.OrganizationID {
			return errs.ConflictError{Domain: owner.CustomDomainValue()}
		}
	}
	if mapping != nil && mapping.OrganizationID != site.OrganizationID {
		return errs.ConflictError{Domain: mapping.Domain}
	}
	return nil
}

func heldByOtherSite(site *entity.Site, owners []entity.Site, mapping *entity.DomainMapping) bool {
	for _, owner := range owners {
		if owner.ID != site.ID {
			return true
		}
	}
	return mapping != nil && mapping.SiteID != site.ID
}
