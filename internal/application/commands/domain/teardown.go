package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/google/uuid"
)

// StepFailure is a teardown step that did not complete.
type StepFailure struct {
	Step   consts.CleanupStep
	Target string
	Err    error
}

type Report struct {
	Failures []StepFailure
}

func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	joined := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		joined = append(joined, fmt.Errorf("%s %s: %w", f.Step, f.Target, f.Err))
	}
	return errors.Join(joined...)
}

// Teardown removes a mapping's provider resources and then the mapping.
type Teardown struct {
	hostnames interfaces.HostnameGateway
	mappings  interfaces.MappingStore
}

func NewTeardown(hostnames interfaces.HostnameGateway, mappings interfaces.MappingStore) *Teardown {
	return &Teardown{hostnames: hostnames, mappings: mappings}
}

// Run deletes the worker route, then the hostname, then the mapping. Unless
// force is set, the mapping is kept when an earlier step failed so a retry
// still knows the provider ids.
func (t *Teardown) Run(ctx context.Context, mapping *entity.DomainMapping, force bool) Report {
	var report Report
	record := func(step consts.CleanupStep, target string) {
		if err := t.Step(ctx, step, target); err != nil {
			slog.Warn("teardown step failed", "step", step, "target", target, "domain", mapping.Domain, "err", err)
			report.Failures = append(report.Failures, StepFailure{Step: step, Target: target, Err: err})
		}
	}

	if mapping.WorkerRouteID != "" {
		record(consts.StepDeleteWorkerRoute, mapping.WorkerRouteID)
	}
	if mapping.HostnameID != "" {
		record(consts.StepDeleteHostname, mapping.HostnameID)
	}
	if len(report.Failures) == 0 || force {
		record(consts.StepDeleteMapping, mapping.Domain)
	}
	return report
}

// RunForSite tears down the domain's mapping when it still belongs to siteID.
// A mapping that is gone or held by another site counts as done.
func (t *Teardown) RunForSite(ctx context.Context, domain string, siteID uuid.UUID) error {
	mapping, err := t.mappings.Get(ctx, domain)
	if err != nil {
		return err
	}
	if mapping == nil || mapping.SiteID != siteID {
		slog.Info("nothing to tear down", "domain", domain, "site", siteID)
		return nil
	}
	return t.Run(ctx, mapping, false).Err()
}

// Step runs a single domain teardown step. Resources already gone count as
// deleted.
func (t *Teardown) Step(ctx context.Context, step consts.CleanupStep, target string) error {
	var err error
	switch step {
	case consts.StepDeleteWorkerRoute:
		err = t.hostnames.DeleteWorkerRoute(ctx, target)
	case consts.StepDeleteHostname:
		err = t.hostnames.DeleteCustomHostname(ctx, target)
	case consts.StepDeleteMapping:
		err = t.mappings.Delete(ctx, target)
	default:
		return fmt.Errorf("unknown domain teardown step %q", step)
	}
	if errors.Is(err, errs.ErrResourceNotFound) {
		slog.Info("resource already deleted", "step", step, "target", target)
		return nil
	}
	return err
}
