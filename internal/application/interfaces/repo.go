package interfaces

import (
	"context"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	shared "github.com/Builder-Lawyers/orbiter-backend/pkg/interfaces"
	"github.com/google/uuid"
)

// SiteRepo is the relational record of sites, including the custom-domain
// columns the orchestrator owns.
type SiteRepo interface {
	GetSiteByID(ctx context.Context, siteID uuid.UUID) (*entity.Site, error)
	GetSiteByDomain(ctx context.Context, domain string) (*entity.Site, error)
	GetSitesByCustomDomain(ctx context.Context, customDomain string) ([]entity.Site, error)
	CountSitesForOrganization(ctx context.Context, orgID uuid.UUID) (int, error)
	UpsertSite(ctx context.Context, site entity.Site) (*entity.Site, error)
	SetCustomDomain(ctx context.Context, siteID uuid.UUID, customDomain string) error
	SetDomainVerification(ctx context.Context, siteID uuid.UUID, verified, sslIssued bool) error
	ClearCustomDomain(ctx context.Context, siteID uuid.UUID) error
	DeleteSite(ctx context.Context, siteID uuid.UUID) error
}

type EventRepo interface {
	InsertEvent(ctx context.Context, event shared.Event) error
}

// MappingStore keeps the in-flight provisioning record per custom domain.
type MappingStore interface {
	Get(ctx context.Context, domain string) (*entity.DomainMapping, error)
	Put(ctx context.Context, mapping *entity.DomainMapping) error
	// Create fails with errs.ErrMappingExists when the domain is already claimed.
	Create(ctx context.Context, mapping *entity.DomainMapping) error
	Delete(ctx context.Context, domain string) error
}

// Namespace is a raw key/value namespace. Get returns errs.ErrKeyNotFound for
// absent keys.
type Namespace interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
}
