package query

import (
	"context"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/dto"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
)

type GetCustomDomain struct {
	uowFactory *dbs.UOWFactory
	mappings   interfaces.MappingStore
}

func NewGetCustomDomain(factory *dbs.UOWFactory, mappings interfaces.MappingStore) *GetCustomDomain {
	return &GetCustomDomain{uowFactory: factory, mappings: mappings}
}

func (c *GetCustomDomain) Query(ctx context.Context, siteID uuid.UUID, identity *auth.Identity) (dto.CustomDomainStatus, error) {
	site, err := domain.LoadOwnedSite(ctx, c.uowFactory, siteID, identity)
	if err != nil {
		return dto.CustomDomainStatus{}, err
	}

	status := dto.CustomDomainStatus{
		CustomDomain: site.CustomDomain,
		State:        dto.CustomDomainStatusState(entity.DomainState(site)),
		Verified:     site.DomainOwnershipVerified,
		SslIssued:    site.SSLIssued,
	}
	if !site.HasCustomDomain() {
		return status, nil
	}

	mapping, err := c.mappings.Get(ctx, site.CustomDomainValue())
	if err != nil {
		return dto.CustomDomainStatus{}, err
	}
	if mapping != nil {
		if mapping.SSLStatus != "" {
			sslStatus := string(mapping.SSLStatus)
			status.SslStatus = &sslStatus
		}
		status.LastChecked = mapping.LastChecked
	}
	return status, nil
}
