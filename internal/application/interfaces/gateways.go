package interfaces

import (
	"context"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/google/uuid"
)

// RecordGateway manages platform subdomain records at the DNS provider.
type RecordGateway interface {
	RecordExists(ctx context.Context, name string) (*entity.RecordLookup, error)
	CreatePlatformRecord(ctx context.Context, name string) error
	// DeletePlatformRecord returns errs.ErrRecordNotFound when nothing matches.
	DeletePlatformRecord(ctx context.Context, name string) error
	PurgeEdgeCache(ctx context.Context, domain string)
}

type OwnershipVerifier interface {
	VerifyExternalOwnership(ctx context.Context, domain string) (bool, error)
}

// Registrar tells whether a domain is registered at all.
type Registrar interface {
	IsRegistered(ctx context.Context, domain string) (bool, error)
}

// HostnameGateway fronts customer domains at the edge and tracks their SSL.
type HostnameGateway interface {
	Type() consts.ProvisioningType
	CreateCustomHostname(ctx context.Context, domain string) (*entity.CustomHostname, error)
	CreateWorkerRoute(ctx context.Context, domain string) (*entity.WorkerRoute, error)
	GetHostnameStatus(ctx context.Context, hostnameID string) (*entity.CustomHostname, error)
	// PollSSLValidation is true once active, false while pending and fails
	// with errs.SSLValidationError when the provider gave up.
	PollSSLValidation(ctx context.Context, hostnameID string) (bool, error)
	// Delete calls return errs.ErrResourceNotFound when already gone.
	DeleteCustomHostname(ctx context.Context, hostnameID string) error
	DeleteWorkerRoute(ctx context.Context, routeID string) error
}

type PlanSource interface {
	GetPlan(ctx context.Context, orgID uuid.UUID) (consts.Plan, error)
	SetPlan(ctx context.Context, orgID uuid.UUID, plan consts.Plan) error
	DeletePlan(ctx context.Context, orgID uuid.UUID) error
}

// ContentSource reads deployed site content by content id.
type ContentSource interface {
	GetSiteData(ctx context.Context, cid string) (string, error)
	// GetRedirectsFile reports false when the deployment has no _redirects.
	GetRedirectsFile(ctx context.Context, cid string) (string, bool, error)
}

type ContentScreen interface {
	Screen(ctx context.Context, html, subdomain, cid string) (*entity.ScanReport, error)
}

type ContractQueue interface {
	Publish(ctx context.Context, msg entity.ContractMessage) error
}

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Entitlements decides plan-gated actions from the billing provider.
type Entitlements interface {
	CanCreateSite(ctx context.Context, orgID uuid.UUID) (bool, error)
}

// ContentReviewer gives flagged content a second opinion.
type ContentReviewer interface {
	Review(ctx context.Context, html string, patterns []string) (blocked bool, reason string, err error)
}
