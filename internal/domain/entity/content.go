package entity

import "github.com/google/uuid"

type ScanReport struct {
	RiskScore        int      `json:"riskScore"`
	DetectedPatterns []string `json:"detectedPatterns"`
	Reviewed         bool     `json:"reviewed"`
	Blocked          bool     `json:"blocked"`
	ReviewReason     string   `json:"reviewReason,omitempty"`
}

type ContractMessageType string

const (
	CreateContract ContractMessageType = "create_contract"
	UpdateContract ContractMessageType = "update_contract"
)

// ContractMessage is published for the on-chain contract worker.
type ContractMessage struct {
	Type            ContractMessageType `json:"type"`
	CID             string              `json:"cid"`
	Domain          string              `json:"domain,omitempty"`
	SiteID          *uuid.UUID          `json:"siteId,omitempty"`
	ContractAddress string              `json:"contractAddress,omitempty"`
	UserID          *uuid.UUID          `json:"userId,omitempty"`
	OrgID           uuid.UUID           `json:"orgId"`
	RetryCount      int                 `json:"retryCount,omitempty"`
}
