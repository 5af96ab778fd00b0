package entity

import (
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/google/uuid"
)

type Site struct {
	ID                      uuid.UUID
	OrganizationID          uuid.UUID
	Domain                  string
	CustomDomain            *string
	DomainOwnershipVerified bool
	SSLIssued               bool
	CID                     string
	SiteContract            *string
	DeployedBy              *uuid.UUID
	Source                  string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Subdomain strips the platform suffix from the stored domain.
func (s *Site) Subdomain(platformDomain string) string {
	return strings.TrimSuffix(strings.ToLower(s.Domain), "."+strings.ToLower(platformDomain))
}

func (s *Site) HasCustomDomain() bool {
	return s.CustomDomain != nil && *s.CustomDomain != ""
}

func (s *Site) CustomDomainValue() string {
	if s.CustomDomain == nil {
		return ""
	}
	return *s.CustomDomain
}

// DomainState derives the onboarding state from the site flags. A custom
// domain whose mapping went missing still reads as requested so the next add
// resumes provisioning.
func DomainState(site *Site) consts.DomainState {
	switch {
	case site == nil || !site.HasCustomDomain():
		return consts.StateNoCustomDomain
	case site.DomainOwnershipVerified && site.SSLIssued:
		return consts.StateActive
	case site.DomainOwnershipVerified:
		return consts.StateOwnershipVerified
	default:
		return consts.StateRequested
	}
}
