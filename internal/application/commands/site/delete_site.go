package site

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	appconsts "github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
)

type DeleteSite struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	roles      domain.Authorizer
	records    interfaces.RecordGateway
	mappings   interfaces.MappingStore
	teardown   *domain.Teardown
	keys       Keys
}

func NewDeleteSite(
	cfg Config, factory *dbs.UOWFactory, roles domain.Authorizer, records interfaces.RecordGateway,
	mappings interfaces.MappingStore, teardown *domain.Teardown, keys Keys,
) *DeleteSite {
	return &DeleteSite{
		cfg:        cfg,
		uowFactory: factory,
		roles:      roles,
		records:    records,
		mappings:   mappings,
		teardown:   teardown,
		keys:       keys,
	}
}

// Execute tears the site down step by step and always deletes the row. Steps
// that fail are written to the outbox in the same transaction so the poller
// can finish them.
func (c *DeleteSite) Execute(ctx context.Context, siteID uuid.UUID, identity *auth.Identity) (err error) {
	if err := c.roles.Authorize(identity, consts.ActionDeleteSite); err != nil {
		return err
	}
	site, err := domain.LoadOwnedSite(ctx, c.uowFactory, siteID, identity)
	if err != nil {
		return err
	}

	failures := c.cleanup(ctx, site)

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	if err = repo.NewSiteRepo(tx).DeleteSite(ctx, site.ID); err != nil {
		return err
	}
	eventRepo := repo.NewEventRepo(tx)
	for _, f := range failures {
		if err = eventRepo.InsertEvent(ctx, f); err != nil {
			return err
		}
		metrics.CleanupFailures.WithLabelValues(string(f.Step)).Inc()
	}
	if site.HasCustomDomain() {
		metrics.Transition(string(entity.DomainState(site)), string(consts.StateNoCustomDomain))
	}

	slog.Info("site deleted", "site", site.ID, "domain", site.Domain, "pendingSteps", len(failures))
	return nil
}

func (c *DeleteSite) cleanup(ctx context.Context, site *entity.Site) []events.CleanupStepFailed {
	var failures []events.CleanupStepFailed
	fail := func(step appconsts.CleanupStep, target string, err error) {
		slog.Warn("site cleanup step failed", "site", site.ID, "step", step, "target", target, "err", err)
		failures = append(failures, events.CleanupStepFailed{
			SiteID:         site.ID,
			OrganizationID: site.OrganizationID,
			Step:           step,
			Target:         target,
			Reason:         err.Error(),
			CreatedAt:      time.Now().UTC(),
		})
	}
	name := site.Subdomain(c.cfg.PlatformDomain)

	if err := DeletePlatformRecord(ctx, c.records, name); err != nil {
		fail(appconsts.StepDeletePlatformRecord, name, err)
	}
	if err := DeleteSiteKeys(ctx, c.keys, name); err != nil {
		fail(appconsts.StepDeleteSiteKeys, name, err)
	}

	if !site.HasCustomDomain() {
		return failures
	}
	mapping, err := c.mappings.Get(ctx, site.CustomDomainValue())
	if err != nil {
		fail(appconsts.StepTeardownDomain, site.CustomDomainValue(), err)
		return failures
	}
	if mapping == nil {
		return failures
	}
	for _, f := range c.teardown.Run(ctx, mapping, true).Failures {
		fail(f.Step, f.Target, f.Err)
	}
	return failures
}

// DeletePlatformRecord treats an already missing record as deleted.
func DeletePlatformRecord(ctx context.Context, records interfaces.RecordGateway, name string) error {
	err := records.DeletePlatformRecord(ctx, name)
	if errors.Is(err, errs.ErrRecordNotFound) {
		slog.Info("platform record already gone", "subdomain", name)
		return nil
	}
	return err
}

// DeleteSiteKeys removes every key the edge router holds for the subdomain.
func DeleteSiteKeys(ctx context.Context, keys Keys, name string) error {
	var errList []error
	for _, ns := range []interfaces.Namespace{keys.Sites, keys.SiteToOrg, keys.Redirects} {
		if err := ns.Delete(ctx, name); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
