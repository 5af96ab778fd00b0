// Package processors handles events the outbox poller picks up.
package processors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/site"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	shared "github.com/Builder-Lawyers/orbiter-backend/pkg/interfaces"
)

// RetryCleanup re-runs one compensating step recorded by a site deletion.
type RetryCleanup struct {
	records  interfaces.RecordGateway
	keys     site.Keys
	teardown *domain.Teardown
}

func NewRetryCleanup(records interfaces.RecordGateway, keys site.Keys, teardown *domain.Teardown) *RetryCleanup {
	return &RetryCleanup{records: records, keys: keys, teardown: teardown}
}

func (c *RetryCleanup) Handle(ctx context.Context, event events.CleanupStepFailed) (shared.UoW, error) {
	if event.Target == "" {
		return nil, fmt.Errorf("cleanup event for site %v has no target", event.SiteID)
	}

	var err error
	switch event.Step {
	case consts.StepDeletePlatformRecord:
		err = site.DeletePlatformRecord(ctx, c.records, event.Target)
	case consts.StepDeleteSiteKeys:
		err = site.DeleteSiteKeys(ctx, c.keys, event.Target)
	case consts.StepDeleteWorkerRoute, consts.StepDeleteHostname, consts.StepDeleteMapping:
		err = c.teardown.Step(ctx, event.Step, event.Target)
	case consts.StepTeardownDomain:
		err = c.teardown.RunForSite(ctx, event.Target, event.SiteID)
	default:
		return nil, fmt.Errorf("unknown cleanup step %q", event.Step)
	}
	if err != nil {
		metrics.CleanupFailures.WithLabelValues(string(event.Step)).Inc()
		return nil, errs.RetryableError{Err: fmt.Errorf("err retrying %s for %s, %w", event.Step, event.Target, err)}
	}

	slog.Info("cleanup step completed", "site", event.SiteID, "step", event.Step, "target", event.Target)
	return nil, nil
}
