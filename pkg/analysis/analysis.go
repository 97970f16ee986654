// Package analysis provides the built-in deterministic implementations of
// the AI analysis and anomaly-check contracts. They apply fixed heuristics
// so the pipeline runs fully offline; model-backed implementations satisfy
// the same interfaces.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// ExtremeTotalThreshold is the invoice total above which the anomaly
// checker flags the amount for review.
const ExtremeTotalThreshold = 1_000_000

// HeuristicAnalyzer derives the analysis block mechanically from the
// findings: APPROVE when nothing failed, REJECT when master-data checks
// failed, REVIEW otherwise.
type HeuristicAnalyzer struct{}

func (HeuristicAnalyzer) Analyze(ctx context.Context, inv *invoice.Invoice, findings []invoice.RuleFinding) (invoice.AIAnalysis, error) {
	var failed []invoice.RuleFinding
	for _, f := range findings {
		if f.Status == invoice.FindingFailed {
			failed = append(failed, f)
		}
	}

	if len(failed) == 0 {
		return invoice.AIAnalysis{
			Analysis:           fmt.Sprintf("All %d validation checks passed or were skipped.", len(findings)),
			DiscrepancySummary: "No discrepancies found.",
			Recommendation:     invoice.RecommendApprove,
		}, nil
	}

	names := make([]string, len(failed))
	erpFailure := false
	for i, f := range failed {
		names[i] = f.RuleName
		if f.Source == invoice.SourceERP {
			erpFailure = true
		}
	}

	rec := invoice.RecommendReview
	if erpFailure {
		// Master-data mismatches are not fixable by a reviewer reading
		// the document; they need vendor-side correction.
		rec = invoice.RecommendReject
	}

	return invoice.AIAnalysis{
		Analysis: fmt.Sprintf("%d of %d validation checks failed.", len(failed), len(findings)),
		DiscrepancySummary: fmt.Sprintf("Failed checks: %s.",
			strings.Join(names, "; ")),
		Recommendation: rec,
	}, nil
}

// HeuristicAnomalyChecker flags obviously suspicious invoices: extreme
// totals, placeholder vendor names, negative amounts.
type HeuristicAnomalyChecker struct{}

func (HeuristicAnomalyChecker) Check(ctx context.Context, inv *invoice.Invoice) ([]invoice.RuleFinding, error) {
	var findings []invoice.RuleFinding

	if inv.TotalAmount >= ExtremeTotalThreshold {
		findings = append(findings, invoice.RuleFinding{
			RuleName: "Extreme Total Check",
			Status:   invoice.FindingFailed,
			Message:  fmt.Sprintf("Total %.2f exceeds the %d threshold.", inv.TotalAmount, ExtremeTotalThreshold),
		})
	}
	if inv.TotalAmount < 0 {
		findings = append(findings, invoice.RuleFinding{
			RuleName: "Negative Amount Check",
			Status:   invoice.FindingFailed,
			Message:  fmt.Sprintf("Total %.2f is negative.", inv.TotalAmount),
		})
	}
	if suspiciousVendor(inv.VendorName) {
		findings = append(findings, invoice.RuleFinding{
			RuleName: "Suspicious Vendor Check",
			Status:   invoice.FindingFailed,
			Message:  fmt.Sprintf("Vendor name %q looks like a placeholder.", inv.VendorName),
		})
	}

	return findings, nil
}

var placeholderVendors = []string{"test", "sample", "dummy", "example", "asdf"}

func suspiciousVendor(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return false
	}
	for _, p := range placeholderVendors {
		if lower == p || strings.HasPrefix(lower, p+" ") {
			return true
		}
	}
	return false
}
