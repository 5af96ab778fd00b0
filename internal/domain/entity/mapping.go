package entity

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/google/uuid"
)

// DomainMapping is the provisioning record stored under the bare custom
// domain in the mapping namespace.
type DomainMapping struct {
	Domain         string                  `json:"-"`
	Subdomain      string                  `json:"subdomain"`
	SiteID         uuid.UUID               `json:"site_id"`
	OrganizationID uuid.UUID               `json:"organization_id"`
	Created        time.Time               `json:"created"`
	HostnameID     string                  `json:"cloudflare_hostname_id,omitempty"`
	WorkerRouteID  string                  `json:"worker_route_id,omitempty"`
	Type           consts.ProvisioningType `json:"type"`
	SSLStatus      consts.SSLStatus        `json:"ssl_status,omitempty"`
	LastChecked    *time.Time              `json:"last_checked,omitempty"`
}

// Complete reports whether every external resource has been created.
func (m *DomainMapping) Complete() bool {
	return m != nil && m.HostnameID != "" && m.WorkerRouteID != ""
}

func (m *DomainMapping) MarkChecked(status consts.SSLStatus, at time.Time) {
	m.SSLStatus = status
	t := at.UTC()
	m.LastChecked = &t
}

type SSLState struct {
	Status           consts.SSLStatus `json:"status"`
	ValidationErrors []string         `json:"validation_errors,omitempty"`
}

type CustomHostname struct {
	ID       string   `json:"id"`
	Hostname string   `json:"hostname"`
	Status   string   `json:"status"`
	SSL      SSLState `json:"ssl"`
}

type WorkerRoute struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
}

type DNSRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
}

type RecordLookup struct {
	Exists       bool
	Records      []DNSRecord
	TotalRecords int
}

// DNSInstructions is what the tenant must configure at their DNS provider.
type DNSInstructions struct {
	RecordType  consts.RecordType `json:"recordType"`
	RecordHost  string            `json:"recordHost"`
	RecordValue string            `json:"recordValue"`
}

type Verification struct {
	Verified   bool             `json:"verified"`
	IsVerified bool             `json:"isVerified"`
	SSLIssued  bool             `json:"sslIssued"`
	SSLStatus  consts.SSLStatus `json:"sslStatus,omitempty"`
}
