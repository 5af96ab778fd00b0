package billing

import (
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	APIKey        string
	WebhookSecret string
	// Prices maps Stripe price ids to plans.
	Prices map[string]consts.Plan
}

func NewBillingConfig() Config {
	prices := make(map[string]consts.Plan)
	add := func(key string, plan consts.Plan) {
		if id := env.GetEnv(key, ""); id != "" {
			prices[id] = plan
		}
	}
	add("LAUNCH_MONTHLY_PRICE_ID", consts.PlanLaunch)
	add("LAUNCH_YEARLY_PRICE_ID", consts.PlanLaunch)
	add("ORBIT_MONTHLY_PRICE_ID", consts.PlanOrbit)
	add("ORBIT_YEARLY_PRICE_ID", consts.PlanOrbit)

	return Config{
		APIKey:        env.GetEnv("STRIPE_KEY", ""),
		WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		Prices:        prices,
	}
}

// PlanForPrice maps a price id to its plan; unknown prices are free.
func (c Config) PlanForPrice(priceID string) consts.Plan {
	if plan, ok := c.Prices[priceID]; ok {
		return plan
	}
	return consts.PlanFree
}
