package db

import (
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/goccy/go-json"
)

func MapSiteModelToEntity(site Site) entity.Site {
	return entity.Site{
		ID:                      site.ID,
		OrganizationID:          site.OrganizationID,
		Domain:                  site.Domain,
		CustomDomain:            site.CustomDomain,
		DomainOwnershipVerified: site.DomainOwnershipVerified,
		SSLIssued:               site.SSLIssued,
		CID:                     site.CID,
		SiteContract:            site.SiteContract,
		DeployedBy:              site.DeployedBy,
		Source:                  site.Source,
		CreatedAt:               site.CreatedAt,
		UpdatedAt:               site.UpdatedAt,
	}
}

func MapOutboxModelToCleanupStepFailed(outbox Outbox) events.CleanupStepFailed {
	var event events.CleanupStepFailed
	if err := json.Unmarshal(outbox.Payload, &event); err != nil {
		slog.Error("error unmarshaling event", "err", err)
		return events.CleanupStepFailed{}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = outbox.CreatedAt
	}
	return event
}

func MapOutboxModelToNotifyOperators(outbox Outbox) events.NotifyOperators {
	var event events.NotifyOperators
	if err := json.Unmarshal(outbox.Payload, &event); err != nil {
		slog.Error("error unmarshaling event", "err", err)
		return events.NotifyOperators{}
	}
	return event
}
