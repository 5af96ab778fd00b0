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
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/subdomain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
)

type CreateSite struct {
	cfg          Config
	uowFactory   *dbs.UOWFactory
	roles        domain.Authorizer
	entitlements interfaces.Entitlements
	plans        interfaces.PlanSource
	records      interfaces.RecordGateway
	content      interfaces.ContentSource
	screen       interfaces.ContentScreen
	queue        interfaces.ContractQueue
	notifier     interfaces.Notifier
	keys         Keys
}

func NewCreateSite(
	cfg Config, factory *dbs.UOWFactory, roles domain.Authorizer, entitlements interfaces.Entitlements,
	plans interfaces.PlanSource, records interfaces.RecordGateway, content interfaces.ContentSource,
	screen interfaces.ContentScreen, queue interfaces.ContractQueue, notifier interfaces.Notifier, keys Keys,
) *CreateSite {
	return &CreateSite{
		cfg:          cfg,
		uowFactory:   factory,
		roles:        roles,
		entitlements: entitlements,
		plans:        plans,
		records:      records,
		content:      content,
		screen:       screen,
		queue:        queue,
		notifier:     notifier,
		keys:         keys,
	}
}

// Execute publishes a deployment on a new platform subdomain.
func (c *CreateSite) Execute(ctx context.Context, req *dto.CreateSiteRequest, source string, identity *auth.Identity) (*entity.Site, error) {
	if err := c.roles.Authorize(identity, consts.ActionCreateSite); err != nil {
		return nil, err
	}
	if req.Cid == "" {
		return nil, errs.NewValidationError("cid is required")
	}

	allowed, err := c.entitlements.CanCreateSite(ctx, identity.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.EntitlementError{Reason: "This action would exceed your plan limits"}
	}

	if res := subdomain.Validate(req.Subdomain); !res.IsValid {
		return nil, errs.NewValidationError(res.Errors...)
	}
	name := subdomain.Normalize(req.Subdomain)

	lookup, err := c.records.RecordExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if lookup.Exists {
		return nil, errs.NewValidationError("Subdomain already exists")
	}

	html, err := c.content.GetSiteData(ctx, req.Cid)
	if err != nil {
		return nil, err
	}
	report, err := c.screen.Screen(ctx, html, name, req.Cid)
	if err != nil {
		return nil, err
	}
	if report.Blocked {
		return nil, errs.ContentRejectedError{Patterns: report.DetectedPatterns}
	}

	if err = c.records.CreatePlatformRecord(ctx, name); err != nil {
		return nil, err
	}
	site, err := c.persist(ctx, req, name, source, identity)
	if err != nil {
		if delErr := c.records.DeletePlatformRecord(ctx, name); delErr != nil {
			slog.Error("err rolling back platform record", "subdomain", name, "err", delErr)
		}
		return nil, err
	}

	if err = c.keys.Sites.Put(ctx, name, []byte(req.Cid)); err != nil {
		return nil, err
	}
	if err = c.keys.SiteToOrg.Put(ctx, name, []byte(identity.OrganizationID.String())); err != nil {
		return nil, err
	}
	syncRedirects(ctx, c.plans, c.content, c.keys, identity.OrganizationID, name, req.Cid)

	msg := entity.ContractMessage{
		Type:       entity.CreateContract,
		CID:        req.Cid,
		Domain:     name,
		SiteID:     &site.ID,
		OrgID:      identity.OrganizationID,
		UserID:     deployer(identity),
		RetryCount: 3,
	}
	if err = c.queue.Publish(ctx, msg); err != nil {
		slog.Error("err queueing contract creation", "site", site.ID, "err", err)
	}

	notify(ctx, c.notifier, mail.SiteCreatedAlert{SiteURL: "https://" + site.Domain, CID: req.Cid, UserID: identity.UserID})
	slog.Info("site created", "site", site.ID, "domain", site.Domain, "org", identity.OrganizationID)
	return site, nil
}

func (c *CreateSite) persist(ctx context.Context, req *dto.CreateSiteRequest, name, source string, identity *auth.Identity) (site *entity.Site, err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewSiteRepo(tx).UpsertSite(ctx, entity.Site{
		OrganizationID: identity.OrganizationID,
		Domain:         name + "." + c.cfg.PlatformDomain,
		CID:            req.Cid,
		SiteContract:   req.SiteContract,
		DeployedBy:     deployer(identity),
		Source:         source,
	})
}
