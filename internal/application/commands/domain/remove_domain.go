package domain

import (
	"context"
	"log/slog"

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

type RemoveDomain struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	roles      Authorizer
	mappings   interfaces.MappingStore
	records    interfaces.RecordGateway
	teardown   *Teardown
}

func NewRemoveDomain(
	cfg Config, factory *dbs.UOWFactory, roles Authorizer, mappings interfaces.MappingStore,
	records interfaces.RecordGateway, teardown *Teardown,
) *RemoveDomain {
	return &RemoveDomain{
		cfg:        cfg,
		uowFactory: factory,
		roles:      roles,
		mappings:   mappings,
		records:    records,
		teardown:   teardown,
	}
}

// Execute detaches the domain. Provider resources go first; site rows are
// only cleared once they are gone, so a failed call can simply be repeated.
func (c *RemoveDomain) Execute(ctx context.Context, siteID uuid.UUID, req dto.CustomDomainRequest, identity *auth.Identity) (err error) {
	if err := c.roles.Authorize(identity, consts.ActionManageCustomDomain); err != nil {
		return err
	}
	domain, err := NormalizeDomain(req.CustomDomain, c.cfg.PlatformDomain)
	if err != nil {
		return err
	}
	site, err := LoadOwnedSite(ctx, c.uowFactory, siteID, identity)
	if err != nil {
		return err
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)
	sites := repo.NewSiteRepo(tx)

	owners, err := sites.GetSitesByCustomDomain(ctx, domain)
	if err != nil {
		return err
	}
	mapping, err := c.mappings.Get(ctx, domain)
	if err != nil {
		return err
	}
	if checkOwnership(site, owners, mapping) != nil {
		return errs.NewValidationError("Custom domain not found or not owned")
	}

	if mapping != nil {
		if err = c.teardown.Run(ctx, mapping, false).Err(); err != nil {
			return err
		}
	}

	cleared := map[uuid.UUID]struct{}{}
	for _, owner := range owners {
		if err = sites.ClearCustomDomain(ctx, owner.ID); err != nil {
			return err
		}
		cleared[owner.ID] = struct{}{}
	}
	if _, ok := cleared[site.ID]; !ok && site.CustomDomainValue() == domain {
		if err = sites.ClearCustomDomain(ctx, site.ID); err != nil {
			return err
		}
	}
	if len(owners) > 0 || mapping != nil {
		metrics.Transition(string(entity.DomainState(site)), string(consts.StateNoCustomDomain))
	}

	c.records.PurgeEdgeCache(ctx, domain)
	slog.Info("custom domain removed", "domain", domain, "site", site.ID)
	return nil
}
