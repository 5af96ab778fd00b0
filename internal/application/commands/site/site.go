// Package site manages the lifecycle of a site on its platform subdomain.
package site

import (
	"context"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/redirects"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// syncRedirects stores the parsed _redirects of a deployment for paid plans.
// Failures are logged; a site without redirects still serves.
func syncRedirects(ctx context.Context, plans interfaces.PlanSource, content interfaces.ContentSource, keys Keys, orgID uuid.UUID, subdomain, cid string) {
	plan, err := plans.GetPlan(ctx, orgID)
	if err != nil {
		slog.Error("err resolving plan for redirects", "org", orgID, "err", err)
		return
	}
	if plan == consts.PlanFree {
		return
	}

	file, ok, err := content.GetRedirectsFile(ctx, cid)
	if err != nil {
		slog.Error("err fetching redirects", "cid", cid, "err", err)
		return
	}
	if !ok {
		return
	}
	rules, err := json.Marshal(redirects.Parse(file))
	if err != nil {
		slog.Error("err encoding redirects", "cid", cid, "err", err)
		return
	}
	if err = keys.Redirects.Put(ctx, subdomain, rules); err != nil {
		slog.Error("err storing redirects", "subdomain", subdomain, "err", err)
	}
}

func notify(ctx context.Context, notifier interfaces.Notifier, alert mail.Alert) {
	if err := notifier.Notify(ctx, alert.GetSubject(), alert.GetBody()); err != nil {
		slog.Error("err notifying operators", "subject", alert.GetSubject(), "err", err)
	}
}

// deployer is nil for identities without a user, such as organization keys.
func deployer(identity *auth.Identity) *uuid.UUID {
	if identity.UserID == uuid.Nil {
		return nil
	}
	id := identity.UserID
	return &id
}
