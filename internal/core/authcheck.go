package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CheckType string

const (
	CheckSPF   CheckType = "SPF"
	CheckDKIM  CheckType = "DKIM"
	CheckDMARC CheckType = "DMARC"
)

type DMARCPolicy string

const (
	PolicyNone       DMARCPolicy = "none"
	PolicyQuarantine DMARCPolicy = "quarantine"
	PolicyReject     DMARCPolicy = "reject"
)

// AuthCheck is the current verification result for one mechanism. The backend
// guarantees at most one current check per type per domain.
type AuthCheck struct {
	ID        uuid.UUID `json:"id"`
	CheckType CheckType `json:"check_type"`
	IsValid   bool      `json:"is_valid"`
	CheckData CheckData `json:"check_data,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// CheckData is a tagged union keyed by the owning check's type. Exactly one
// variant is set for the known mechanisms; anything else stays in Raw so
// unknown check types are carried through untouched rather than rejected.
type CheckData struct {
	SPF   *SPFDetails
	DKIM  *DKIMDetails
	DMARC *DMARCDetails
	Raw   json.RawMessage
}

type SPFDetails struct {
	Record       string `json:"record,omitempty"`
	LookupCount  int    `json:"lookup_count,omitempty"`
	AllQualifier string `json:"all_qualifier,omitempty"`
}

type DKIMDetails struct {
	Selector string `json:"selector,omitempty"`
	KeyBits  int    `json:"key_bits,omitempty"`
	Record   string `json:"record,omitempty"`
}

type DMARCDetails struct {
	Policy          DMARCPolicy `json:"policy,omitempty"`
	SubdomainPolicy DMARCPolicy `json:"subdomain_policy,omitempty"`
	Percent         int         `json:"pct,omitempty"`
	ReportURI       string      `json:"rua,omitempty"`
}

func (c *AuthCheck) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID        uuid.UUID       `json:"id"`
		CheckType CheckType       `json:"check_type"`
		IsValid   bool            `json:"is_valid"`
		CheckData json.RawMessage `json:"check_data"`
		CheckedAt time.Time       `json:"checked_at"`
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.ID = w.ID
	c.CheckType = w.CheckType
	c.IsValid = w.IsValid
	c.CheckedAt = w.CheckedAt
	c.CheckData = CheckData{}

	if len(w.CheckData) == 0 || string(w.CheckData) == "null" {
		return nil
	}

	switch w.CheckType {
	case CheckSPF:
		var d SPFDetails
		if err := json.Unmarshal(w.CheckData, &d); err != nil {
			return err
		}
		c.CheckData.SPF = &d
	case CheckDKIM:
		var d DKIMDetails
		if err := json.Unmarshal(w.CheckData, &d); err != nil {
			return err
		}
		c.CheckData.DKIM = &d
	case CheckDMARC:
		var d DMARCDetails
		if err := json.Unmarshal(w.CheckData, &d); err != nil {
			return err
		}
		c.CheckData.DMARC = &d
	default:
		c.CheckData.Raw = append(json.RawMessage(nil), w.CheckData...)
	}

	return nil
}

func (c AuthCheck) MarshalJSON() ([]byte, error) {
	var detail interface{}
	switch {
	case c.CheckData.SPF != nil:
		detail = c.CheckData.SPF
	case c.CheckData.DKIM != nil:
		detail = c.CheckData.DKIM
	case c.CheckData.DMARC != nil:
		detail = c.CheckData.DMARC
	case len(c.CheckData.Raw) > 0:
		detail = c.CheckData.Raw
	}

	return json.Marshal(struct {
		ID        uuid.UUID   `json:"id"`
		CheckType CheckType   `json:"check_type"`
		IsValid   bool        `json:"is_valid"`
		CheckData interface{} `json:"check_data,omitempty"`
		CheckedAt time.Time   `json:"checked_at"`
	}{c.ID, c.CheckType, c.IsValid, detail, c.CheckedAt})
}

// DMARCPolicyValue returns the published policy, or empty when the check is
// not a DMARC check or carries no detail.
func (c *AuthCheck) DMARCPolicyValue() DMARCPolicy {
	if c.CheckData.DMARC == nil {
		return ""
	}
	return c.CheckData.DMARC.Policy
}
