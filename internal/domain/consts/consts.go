package consts

type Plan string

const (
	PlanFree   Plan = "free"
	PlanLaunch Plan = "launch"
	PlanOrbit  Plan = "orbit"
)

// SiteLimits caps the number of sites per organization. Orbit is unlimited.
var SiteLimits = map[Plan]int{
	PlanFree:   2,
	PlanLaunch: 5,
}

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type Action string

const (
	ActionCreateSite         Action = "create_site"
	ActionUpdateSite         Action = "update_site"
	ActionDeleteSite         Action = "delete_site"
	ActionManageCustomDomain Action = "manage_custom_domain"
	ActionManageBilling      Action = "manage_billing"
)

type SSLStatus string

const (
	SSLStatusInitializing      SSLStatus = "initializing"
	SSLStatusPendingValidation SSLStatus = "pending_validation"
	SSLStatusPendingIssuance   SSLStatus = "pending_issuance"
	SSLStatusPendingDeployment SSLStatus = "pending_deployment"
	SSLStatusActive            SSLStatus = "active"
	SSLStatusFailed            SSLStatus = "failed"
)

// ProvisioningType tags how a custom domain was provisioned.
type ProvisioningType string

const (
	ProvisioningCloudflareSaaS ProvisioningType = "cloudflare-saas"
	ProvisioningAWSACM         ProvisioningType = "aws-acm"
)

type RecordType string

const (
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeA     RecordType = "A"
)

type DomainState string

const (
	StateNoCustomDomain    DomainState = "NoCustomDomain"
	StateRequested         DomainState = "Requested"
	StateOwnershipVerified DomainState = "OwnershipVerified"
	StateActive            DomainState = "Active"
)

// RecheckPolicy decides what verify does once a domain is already active.
type RecheckPolicy string

const (
	RecheckNone     RecheckPolicy = "none"
	RecheckHostname RecheckPolicy = "hostname"
	RecheckDNS      RecheckPolicy = "dns"
)
