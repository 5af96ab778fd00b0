package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Site struct {
	ID                      uuid.UUID  `db:"id"`
	OrganizationID          uuid.UUID  `db:"organization_id"`
	Domain                  string     `db:"domain"`
	CustomDomain            *string    `db:"custom_domain"`
	DomainOwnershipVerified bool       `db:"domain_ownership_verified"`
	SSLIssued               bool       `db:"ssl_issued"`
	CID                     string     `db:"cid"`
	SiteContract            *string    `db:"site_contract"`
	DeployedBy              *uuid.UUID `db:"deployed_by"`
	Source                  string     `db:"source"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
}

type Member struct {
	UserID         uuid.UUID `db:"user_id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Role           string    `db:"role"`
}

type Key struct {
	Hash           string    `db:"key_hash"`
	OrganizationID uuid.UUID `db:"organization_id"`
	CreatedBy      uuid.UUID `db:"created_by"`
}

type Outbox struct {
	ID        uint64          `db:"id"`
	Event     string          `db:"event"`
	Status    int             `db:"status"`
	Attempts  int             `db:"attempts"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}
