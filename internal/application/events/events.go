package events

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/google/uuid"
)

// CleanupStepFailed is written to the outbox when a compensating step of a
// teardown could not finish. Target is the provider id or key the step acts on.
type CleanupStepFailed struct {
	SiteID         uuid.UUID          `json:"siteID"`
	OrganizationID uuid.UUID          `json:"organizationID"`
	Step           consts.CleanupStep `json:"step"`
	Target         string             `json:"target"`
	Reason         string             `json:"reason"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func (e CleanupStepFailed) GetType() string {
	return "CleanupStepFailed"
}

type NotifyOperators struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (e NotifyOperators) GetType() string {
	return "NotifyOperators"
}
