package site

import (
	"context"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
)

type UpdateSite struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	roles      domain.Authorizer
	plans      interfaces.PlanSource
	records    interfaces.RecordGateway
	content    interfaces.ContentSource
	queue      interfaces.ContractQueue
	notifier   interfaces.Notifier
	keys       Keys
}

func NewUpdateSite(
	cfg Config, factory *dbs.UOWFactory, roles domain.Authorizer, plans interfaces.PlanSource,
	records interfaces.RecordGateway, content interfaces.ContentSource, queue interfaces.ContractQueue,
	notifier interfaces.Notifier, keys Keys,
) *UpdateSite {
	return &UpdateSite{
		cfg:        cfg,
		uowFactory: factory,
		roles:      roles,
		plans:      plans,
		records:    records,
		content:    content,
		queue:      queue,
		notifier:   notifier,
		keys:       keys,
	}
}

// Execute points the site at a new deployment.
func (c *UpdateSite) Execute(ctx context.Context, siteID uuid.UUID, req *dto.UpdateSiteRequest, source string, identity *auth.Identity) (*entity.Site, error) {
	if err := c.roles.Authorize(identity, consts.ActionUpdateSite); err != nil {
		return nil, err
	}
	site, err := domain.LoadOwnedSite(ctx, c.uowFactory, siteID, identity)
	if err != nil {
		return nil, err
	}
	if req.Cid == "" {
		return nil, errs.NewValidationError("cid is required")
	}
	name := site.Subdomain(c.cfg.PlatformDomain)

	syncRedirects(ctx, c.plans, c.content, c.keys, site.OrganizationID, name, req.Cid)
	c.records.PurgeEdgeCache(ctx, site.Domain)

	if site.SiteContract != nil {
		err = c.queue.Publish(ctx, entity.ContractMessage{
			Type:            entity.UpdateContract,
			CID:             req.Cid,
			ContractAddress: *site.SiteContract,
			SiteID:          &site.ID,
			UserID:          deployer(identity),
			OrgID:           site.OrganizationID,
		})
		if err != nil {
			slog.Error("err queueing contract update", "site", site.ID, "err", err)
		}
	}

	if err = c.keys.Sites.Put(ctx, name, []byte(req.Cid)); err != nil {
		return nil, err
	}

	site.CID = req.Cid
	site.DeployedBy = deployer(identity)
	site.Source = source
	updated, err := c.persist(ctx, *site)
	if err != nil {
		return nil, err
	}

	notify(ctx, c.notifier, mail.SiteUpdatedAlert{SiteURL: "https://" + updated.Domain, CID: req.Cid, UserID: identity.UserID})
	slog.Info("site updated", "site", updated.ID, "cid", updated.CID)
	return updated, nil
}

func (c *UpdateSite) persist(ctx context.Context, site entity.Site) (updated *entity.Site, err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewSiteRepo(tx).UpsertSite(ctx, site)
}
