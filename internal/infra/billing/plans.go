package billing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/subscription"
)

// Subscriptions returns the price of a customer's active subscription, or ""
// when there is none.
type Subscriptions interface {
	ActivePriceID(ctx context.Context, customerID string) (string, error)
}

type StripeSubscriptions struct{}

func NewStripeSubscriptions(cfg Config) *StripeSubscriptions {
	stripe.Key = cfg.APIKey
	stripe.SetHTTPClient(&http.Client{Timeout: 10 * time.Second})
	return &StripeSubscriptions{}
}

func (s *StripeSubscriptions) ActivePriceID(ctx context.Context, customerID string) (priceID string, err error) {
	defer func(started time.Time) { metrics.ObserveProvider("stripe", "list_subscriptions", started, err) }(time.Now())

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			return sub.Items.Data[0].Price.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("err listing subscriptions for %v, %w", customerID, err)
	}
	return "", nil
}

// PlanResolver answers plan questions from the live Stripe subscription.
type PlanResolver struct {
	cfg           Config
	uowFactory    *dbs.UOWFactory
	subscriptions Subscriptions
}

var _ interfaces.Entitlements = (*PlanResolver)(nil)

func NewPlanResolver(cfg Config, factory *dbs.UOWFactory, subscriptions Subscriptions) *PlanResolver {
	return &PlanResolver{cfg: cfg, uowFactory: factory, subscriptions: subscriptions}
}

// ActivePlan resolves a customer's plan. No subscription means free.
func (p *PlanResolver) ActivePlan(ctx context.Context, customerID string) (consts.Plan, error) {
	if customerID == "" {
		return consts.PlanFree, nil
	}
	priceID, err := p.subscriptions.ActivePriceID(ctx, customerID)
	if err != nil {
		return "", err
	}
	return p.cfg.PlanForPrice(priceID), nil
}

// CanCreateSite checks the organization's site count against its plan limit.
func (p *PlanResolver) CanCreateSite(ctx context.Context, orgID uuid.UUID) (ok bool, err error) {
	uow := p.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return false, err
	}
	defer uow.Finalize(&err)

	customerID, err := repo.NewOrganizationRepo(tx).GetStripeCustomer(ctx, orgID)
	if err != nil {
		return false, err
	}
	plan, err := p.ActivePlan(ctx, customerID)
	if err != nil {
		return false, err
	}
	limit, capped := consts.SiteLimits[plan]
	if !capped {
		return true, nil
	}

	count, err := repo.NewSiteRepo(tx).CountSitesForOrganization(ctx, orgID)
	if err != nil {
		return false, err
	}
	if count >= limit {
		slog.Info("site limit reached", "org", orgID, "plan", plan, "sites", count)
		return false, nil
	}
	return true, nil
}
