package authstatus

import (
	"sort"

	"github.com/sendwatch/mailauth/internal/core"
)

// Mechanisms are evaluated in this fixed order; ties in priority keep it.
var mechanismOrder = []core.CheckType{core.CheckSPF, core.CheckDKIM, core.CheckDMARC}

// Recommend produces the remediation list for a domain snapshot, sorted by
// priority descending with a stable sort. A fully configured domain with a
// DMARC policy stronger than "none" gets an empty list.
func Recommend(domain *core.Domain) []core.Recommendation {
	recs := make([]core.Recommendation, 0, len(mechanismOrder))

	for _, mechanism := range mechanismOrder {
		check := findCheck(domain.AuthChecks, mechanism)

		switch mechanism {
		case core.CheckSPF:
			if check == nil || !check.IsValid {
				recs = append(recs, core.Recommendation{
					Type:     core.CheckSPF,
					Priority: core.PriorityHigh,
					Message:  "Configure SPF for this domain",
					Action:   "Add an SPF TXT record listing your authorized sending servers",
				})
			}

		case core.CheckDKIM:
			if check == nil || !check.IsValid {
				recs = append(recs, core.Recommendation{
					Type:     core.CheckDKIM,
					Priority: core.PriorityHigh,
					Message:  "Configure DKIM signing for this domain",
					Action:   "Generate DKIM keys and publish the public key as a DNS TXT record",
				})
			}

		case core.CheckDMARC:
			// The missing/invalid case and the weak-policy case are mutually
			// exclusive; a domain never gets two DMARC recommendations.
			if check == nil || !check.IsValid {
				recs = append(recs, core.Recommendation{
					Type:     core.CheckDMARC,
					Priority: core.PriorityMedium,
					Message:  "Configure DMARC for this domain",
					Action:   "Add a _dmarc TXT record with a published policy",
				})
			} else if check.DMARCPolicyValue() == core.PolicyNone {
				recs = append(recs, core.Recommendation{
					Type:     core.CheckDMARC,
					Priority: core.PriorityMedium,
					Message:  "Strengthen your DMARC policy",
					Action:   "Upgrade the DMARC policy from none to quarantine or reject",
				})
			}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Weight() > recs[j].Priority.Weight()
	})

	return recs
}

// findCheck returns the first check matching the type in slice order. The
// backend contract is at most one current check per type; if duplicates ever
// appear the first one wins.
func findCheck(checks []core.AuthCheck, t core.CheckType) *core.AuthCheck {
	for i := range checks {
		if checks[i].CheckType == t {
			return &checks[i]
		}
	}
	return nil
}
