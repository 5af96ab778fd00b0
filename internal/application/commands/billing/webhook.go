// Package billing keeps organization plans in sync with Stripe.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	infrabilling "github.com/Builder-Lawyers/orbiter-backend/internal/infra/billing"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type Webhook struct {
	cfg        infrabilling.Config
	uowFactory *dbs.UOWFactory
	resolver   *infrabilling.PlanResolver
	plans      interfaces.PlanSource
	notifier   interfaces.Notifier
}

func NewWebhook(cfg infrabilling.Config, factory *dbs.UOWFactory, resolver *infrabilling.PlanResolver, plans interfaces.PlanSource, notifier interfaces.Notifier) *Webhook {
	return &Webhook{cfg: cfg, uowFactory: factory, resolver: resolver, plans: plans, notifier: notifier}
}

func (c *Webhook) Execute(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		slog.Warn("rejected stripe webhook", "err", err)
		return errs.NewValidationError("Invalid webhook signature")
	}

	slog.Info("Handling event", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return c.handleCheckout(ctx, event)
	case "customer.subscription.updated":
		return c.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return c.handleSubscriptionDeleted(ctx, event)
	default:
		slog.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (c *Webhook) handleCheckout(ctx context.Context, event stripe.Event) (err error) {
	var session stripe.CheckoutSession
	if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("error parsing checkout session, %w", err)
	}
	orgID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		slog.Warn("checkout session without organization reference", "session", session.ID)
		return nil
	}
	if session.Customer == nil || session.Customer.ID == "" {
		slog.Warn("checkout session without customer", "session", session.ID)
		return nil
	}
	customerID := session.Customer.ID

	plan, err := c.resolver.ActivePlan(ctx, customerID)
	if err != nil {
		return err
	}
	if plan == consts.PlanFree {
		slog.Info("no paid subscription found for checkout", "customer", customerID, "org", orgID)
		return nil
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	if err = repo.NewOrganizationRepo(tx).SetStripeCustomer(ctx, orgID, customerID); err != nil {
		return err
	}
	if err = c.plans.SetPlan(ctx, orgID, plan); err != nil {
		return err
	}
	c.notify(ctx, fmt.Sprintf("%s subscription created by org: %s", plan, orgID))
	return nil
}

func (c *Webhook) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("error parsing subscription, %w", err)
	}
	if _, changed := event.Data.PreviousAttributes["items"]; !changed {
		return nil
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription %s has no price", sub.ID)
	}

	orgID, err := c.organization(ctx, sub.Customer)
	if err != nil {
		return err
	}
	plan := c.cfg.PlanForPrice(sub.Items.Data[0].Price.ID)
	if err = c.plans.SetPlan(ctx, orgID, plan); err != nil {
		return err
	}
	if plan == consts.PlanOrbit {
		c.notify(ctx, fmt.Sprintf("Subscription upgraded to Orbit by org: %s", orgID))
	} else {
		c.notify(ctx, fmt.Sprintf("Subscription downgraded by org: %s", orgID))
	}
	return nil
}

func (c *Webhook) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("error parsing subscription, %w", err)
	}
	orgID, err := c.organization(ctx, sub.Customer)
	if err != nil {
		return err
	}
	if err = c.plans.DeletePlan(ctx, orgID); err != nil {
		return err
	}
	c.notify(ctx, fmt.Sprintf("Subscription cancelled by org: %s", orgID))
	return nil
}

func (c *Webhook) organization(ctx context.Context, customer *stripe.Customer) (orgID uuid.UUID, err error) {
	if customer == nil {
		return uuid.Nil, fmt.Errorf("subscription event without customer")
	}
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer uow.Finalize(&err)

	return repo.NewOrganizationRepo(tx).GetOrganizationByStripeCustomer(ctx, customer.ID)
}

func (c *Webhook) notify(ctx context.Context, message string) {
	alert := mail.SubscriptionAlert{Message: message}
	if err := c.notifier.Notify(ctx, alert.GetSubject(), alert.GetBody()); err != nil {
		slog.Error("err notifying about subscription", "err", err)
	}
}
