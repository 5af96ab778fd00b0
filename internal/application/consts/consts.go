package consts

type OutboxStatus int

const (
	NotProcessed OutboxStatus = iota
	Processed
	Processing
	InError
)

// CleanupStep names one compensating step of a site or domain teardown.
type CleanupStep string

const (
	StepDeletePlatformRecord CleanupStep = "delete_platform_record"
	StepDeleteSiteKeys       CleanupStep = "delete_site_keys"
	StepDeleteWorkerRoute    CleanupStep = "delete_worker_route"
	StepDeleteHostname       CleanupStep = "delete_custom_hostname"
	StepDeleteMapping        CleanupStep = "delete_domain_mapping"
	// StepTeardownDomain re-reads the mapping and runs the whole domain teardown.
	StepTeardownDomain CleanupStep = "teardown_domain"
)
