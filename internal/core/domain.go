package core

import (
	"time"

	"github.com/google/uuid"
)

type Domain struct {
	ID         uuid.UUID `json:"id"`
	DomainName string    `json:"domain_name"`
	IsPrimary  bool      `json:"is_primary"`

	// Set once DKIM keys have been generated for the domain
	DKIMSelector *string `json:"dkim_selector,omitempty"`

	// Backend-owned snapshot, immutable per fetch
	AuthChecks []AuthCheck `json:"auth_checks,omitempty"`
	Alerts     []Alert     `json:"alerts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AlertLevel string

const (
	AlertError   AlertLevel = "error"
	AlertWarning AlertLevel = "warning"
	AlertInfo    AlertLevel = "info"
)

type Alert struct {
	ID         uuid.UUID  `json:"id"`
	DomainID   uuid.UUID  `json:"domain_id"`
	Level      AlertLevel `json:"level"`
	Message    string     `json:"message"`
	IsResolved bool       `json:"is_resolved"`
	CreatedAt  time.Time  `json:"created_at"`
}

type DomainStatus string

const (
	StatusError      DomainStatus = "error"
	StatusWarning    DomainStatus = "warning"
	StatusIncomplete DomainStatus = "incomplete"
	StatusValid      DomainStatus = "valid"
)

// StatusSummary is derived from a Domain snapshot on every read, never stored.
type StatusSummary struct {
	Status               DomainStatus `json:"status"`
	ValidChecks          int          `json:"valid_checks"`
	TotalChecks          int          `json:"total_checks"`
	UnresolvedAlerts     int          `json:"unresolved_alerts"`
	CompletionPercentage float64      `json:"completion_percentage"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Recommendation struct {
	Type     CheckType `json:"type"`
	Priority Priority  `json:"priority"`
	Message  string    `json:"message"`
	Action   string    `json:"action"`
}

// Configuration is the backend's view of a domain's DNS records plus its own
// server-computed recommendations. These are not reconciled with the locally
// derived ones.
type Configuration struct {
	SPFRecord       string   `json:"spf_record"`
	DKIMRecord      string   `json:"dkim_record"`
	DMARCRecord     string   `json:"dmarc_record"`
	Recommendations []string `json:"recommendations"`
}

type DKIMKeyResult struct {
	Selector  string `json:"selector"`
	DNSRecord string `json:"dns_record"`
	PublicKey string `json:"public_key,omitempty"`
}

type BatchCheckResult struct {
	Queued int `json:"queued"`
}
