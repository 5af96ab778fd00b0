package application

import (
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/billing"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/site"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/processors"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/query"
)

type Handlers struct {
	CreateSite      *site.CreateSite
	UpdateSite      *site.UpdateSite
	DeleteSite      *site.DeleteSite
	AddDomain       *domain.AddDomain
	VerifyDomain    *domain.VerifyDomain
	RemoveDomain    *domain.RemoveDomain
	StripeWebhook   *billing.Webhook
	CheckSubdomain  *query.CheckSubdomain
	GetCustomDomain *query.GetCustomDomain
}

type Processors struct {
	RetryCleanup    *processors.RetryCleanup
	NotifyOperators *processors.NotifyOperators
}
