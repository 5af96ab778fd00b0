// Package domain drives a site's custom domain from request through SSL
// activation to removal. Provider resources are created before the records
// that point at them are trusted, and torn down before those records are
// cleared, so every step can be repeated safely.
package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// NormalizeDomain trims, lower-cases and strips the root dot, then checks the
// result is a hostname outside the platform domain.
func NormalizeDomain(raw, platformDomain string) (string, error) {
	domain := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".")
	if domain == "" {
		return "", errs.NewValidationError("Custom domain is required")
	}
	if err := validate.Var(domain, "fqdn"); err != nil {
		return "", errs.NewValidationError("Invalid domain format")
	}
	if domain == platformDomain || strings.HasSuffix(domain, "."+platformDomain) {
		return "", errs.NewValidationError("Custom domain cannot be a platform subdomain")
	}
	return domain, nil
}

// LoadOwnedSite reads the site in its own short transaction and checks that
// the caller's organization owns it.
func LoadOwnedSite(ctx context.Context, uowFactory *dbs.UOWFactory, siteID uuid.UUID, identity *auth.Identity) (site *entity.Site, err error) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	site, err = repo.NewSiteRepo(tx).GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if identity == nil || site.OrganizationID != identity.OrganizationID {
		return nil, errs.PermissionsError{Err: fmt.Errorf("site %v is not owned by the caller's organization", siteID)}
	}
	return site, nil
}

func instructions(cfg Config, domain string) *entity.DNSInstructions {
	if cfg.TargetType == consts.RecordTypeA {
		return &entity.DNSInstructions{RecordType: consts.RecordTypeA, RecordHost: domain, RecordValue: cfg.ProxyIP}
	}
	return &entity.DNSInstructions{RecordType: consts.RecordTypeCNAME, RecordHost: domain, RecordValue: cfg.ZoneName}
}
