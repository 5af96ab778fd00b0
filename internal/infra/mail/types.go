package mail

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Alert is an operator notification.
type Alert interface {
	GetSubject() string
	GetBody() string
}

type SiteCreatedAlert struct {
	SiteURL string
	CID     string
	UserID  uuid.UUID
}

func (a SiteCreatedAlert) GetSubject() string {
	return "New site"
}

func (a SiteCreatedAlert) GetBody() string {
	return fmt.Sprintf("New site: %s\nCreated by %s\nCID: %s", a.SiteURL, a.UserID, a.CID)
}

type SiteUpdatedAlert struct {
	SiteURL string
	CID     string
	UserID  uuid.UUID
}

func (a SiteUpdatedAlert) GetSubject() string {
	return "Site updated"
}

func (a SiteUpdatedAlert) GetBody() string {
	return fmt.Sprintf("Site updated: %s\nUpdated by %s\nCID: %s", a.SiteURL, a.UserID, a.CID)
}

type SubscriptionAlert struct {
	Message string
}

func (a SubscriptionAlert) GetSubject() string {
	return "Subscription change"
}

func (a SubscriptionAlert) GetBody() string {
	return a.Message
}

// CleanupAlert reports teardown steps that kept failing.
type CleanupAlert struct {
	SiteID   uuid.UUID
	Step     string
	Target   string
	Attempts int
	Reasons  []string
}

func (a CleanupAlert) GetSubject() string {
	return "Cleanup needs an operator"
}

func (a CleanupAlert) GetBody() string {
	return fmt.Sprintf("Step %s for site %s (target %s) failed %d times.\n%s",
		a.Step, a.SiteID, a.Target, a.Attempts, strings.Join(a.Reasons, "\n"))
}
