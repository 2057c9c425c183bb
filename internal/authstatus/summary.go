// Package authstatus derives presentation-ready state from a domain's raw
// authentication checks and alerts. Everything here is pure and recomputed on
// every call; derived state is never cached, so staleness is bounded by the
// freshness of the last fetch.
package authstatus

import (
	"github.com/sendwatch/mailauth/internal/core"
)

// Summarize derives the overall health of a domain snapshot.
//
// Status precedence, most severe first: any unresolved error alert wins, then
// any unresolved warning alert, then incomplete when not every check is valid.
// A domain with no checks and no unresolved alerts is valid (the 0/0 case).
func Summarize(domain *core.Domain) core.StatusSummary {
	summary := core.StatusSummary{}

	for _, check := range domain.AuthChecks {
		summary.TotalChecks++
		if check.IsValid {
			summary.ValidChecks++
		}
	}

	hasError := false
	hasWarning := false
	for _, alert := range domain.Alerts {
		if alert.IsResolved {
			continue
		}
		summary.UnresolvedAlerts++
		switch alert.Level {
		case core.AlertError:
			hasError = true
		case core.AlertWarning:
			hasWarning = true
		}
	}

	switch {
	case hasError:
		summary.Status = core.StatusError
	case hasWarning:
		summary.Status = core.StatusWarning
	case summary.ValidChecks < summary.TotalChecks:
		summary.Status = core.StatusIncomplete
	default:
		summary.Status = core.StatusValid
	}

	if summary.TotalChecks > 0 {
		summary.CompletionPercentage = float64(summary.ValidChecks) / float64(summary.TotalChecks) * 100
	}

	return summary
}
