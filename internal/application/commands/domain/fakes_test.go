package domain_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/google/uuid"
)

type fakeHostnames struct {
	mu        sync.Mutex
	seq       int
	hostnames map[string]*entity.CustomHostname
	routes    map[string]string
	created   int
	failRoute error
	// entered and gate hold CreateCustomHostname until gate is closed.
	entered chan struct{}
	gate    chan struct{}
}

func newFakeHostnames() *fakeHostnames {
	return &fakeHostnames{hostnames: map[string]*entity.CustomHostname{}, routes: map[string]string{}}
}

func (f *fakeHostnames) Type() consts.ProvisioningType { return consts.ProvisioningCloudflareSaaS }

func (f *fakeHostnames) CreateCustomHostname(ctx context.Context, domain string) (*entity.CustomHostname, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.created++
	host := &entity.CustomHostname{
		ID:       fmt.Sprintf("ch-%d", f.seq),
		Hostname: domain,
		Status:   "pending",
		SSL:      entity.SSLState{Status: consts.SSLStatusPendingValidation},
	}
	f.hostnames[host.ID] = host
	return host, nil
}

func (f *fakeHostnames) CreateWorkerRoute(_ context.Context, domain string) (*entity.WorkerRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRoute != nil {
		return nil, f.failRoute
	}
	f.seq++
	id := fmt.Sprintf("wr-%d", f.seq)
	f.routes[id] = domain + "/*"
	return &entity.WorkerRoute{ID: id, Pattern: domain + "/*"}, nil
}

func (f *fakeHostnames) GetHostnameStatus(_ context.Context, hostnameID string) (*entity.CustomHostname, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	host, ok := f.hostnames[hostnameID]
	if !ok {
		return nil, errs.ErrResourceNotFound
	}
	cp := *host
	return &cp, nil
}

func (f *fakeHostnames) PollSSLValidation(ctx context.Context, hostnameID string) (bool, error) {
	host, err := f.GetHostnameStatus(ctx, hostnameID)
	if err != nil {
		return false, err
	}
	switch host.SSL.Status {
	case consts.SSLStatusActive:
		return true, nil
	case consts.SSLStatusFailed:
		return false, errs.SSLValidationError{HostnameID: hostnameID, Details: host.SSL.ValidationErrors}
	default:
		return false, nil
	}
}

func (f *fakeHostnames) DeleteCustomHostname(_ context.Context, hostnameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hostnames[hostnameID]; !ok {
		return errs.ErrResourceNotFound
	}
	delete(f.hostnames, hostnameID)
	return nil
}

func (f *fakeHostnames) DeleteWorkerRoute(_ context.Context, routeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routes[routeID]; !ok {
		return errs.ErrResourceNotFound
	}
	delete(f.routes, routeID)
	return nil
}

func (f *fakeHostnames) setSSL(hostnameID string, status consts.SSLStatus, details ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hostnames[hostnameID].SSL = entity.SSLState{Status: status, ValidationErrors: details}
}

func (f *fakeHostnames) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

type fakePlans struct {
	mu    sync.Mutex
	plans map[uuid.UUID]consts.Plan
}

func (f *fakePlans) GetPlan(_ context.Context, orgID uuid.UUID) (consts.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if plan, ok := f.plans[orgID]; ok {
		return plan, nil
	}
	return consts.PlanFree, nil
}

func (f *fakePlans) SetPlan(_ context.Context, orgID uuid.UUID, plan consts.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans[orgID] = plan
	return nil
}

func (f *fakePlans) DeletePlan(_ context.Context, orgID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.plans, orgID)
	return nil
}

type fakeRecords struct {
	mu     sync.Mutex
	purged []string
}

func (f *fakeRecords) RecordExists(context.Context, string) (*entity.RecordLookup, error) {
	return &entity.RecordLookup{}, nil
}

func (f *fakeRecords) CreatePlatformRecord(context.Context, string) error { return nil }

func (f *fakeRecords) DeletePlatformRecord(context.Context, string) error { return nil }

func (f *fakeRecords) PurgeEdgeCache(_ context.Context, domain string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, domain)
}

type fakeVerifier struct {
	owned bool
}

func (f fakeVerifier) VerifyExternalOwnership(context.Context, string) (bool, error) {
	return f.owned, nil
}
