// Package report builds the durable audit artifact for an invoice: the
// structured report assembled from the validation findings plus an AI
// analysis block, persisted as JSON with an HTML rendering alongside.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/rules"
)

// Analyzer produces the narrative analysis block for a finished validation
// run. Implementations typically call a language model with the invoice and
// its findings.
type Analyzer interface {
	Analyze(ctx context.Context, inv *invoice.Invoice, findings []invoice.RuleFinding) (invoice.AIAnalysis, error)
}

// Assembler turns an invoice plus its findings into a Report. The report is
// always produced; an analyzer failure degrades to a REVIEW recommendation
// rather than losing the validation results.
type Assembler struct {
	analyzer Analyzer
	logger   logging.Logger
	now      func() time.Time
}

// NewAssembler creates a report assembler. analyzer may not be nil.
func NewAssembler(analyzer Analyzer, logger logging.Logger) *Assembler {
	return &Assembler{
		analyzer: analyzer,
		logger:   logger.With(logging.F("component", "report")),
		now:      time.Now,
	}
}

// Assemble builds the report for one validation run. The overall status is
// derived from the findings; the analysis block comes from the analyzer,
// falling back to a REVIEW verdict when the analyzer errors.
func (a *Assembler) Assemble(ctx context.Context, inv *invoice.Invoice, findings []invoice.RuleFinding, translationConfidence *float64) *invoice.Report {
	rep := &invoice.Report{
		InvoiceData:           inv,
		ValidationStatus:      rules.OverallStatus(findings),
		ValidationRules:       findings,
		TranslationConfidence: translationConfidence,
		GeneratedAt:           a.now().UTC(),
	}

	analysis, err := a.analyzer.Analyze(ctx, inv, findings)
	if err != nil {
		a.logger.Warn("AI analysis failed, recommending human review",
			logging.F("invoice", inv.OriginalFilename), logging.Err(err))
		analysis = invoice.AIAnalysis{
			Analysis:           fmt.Sprintf("AI analysis unavailable: %v", err),
			DiscrepancySummary: summarizeFailures(findings),
			Recommendation:     invoice.RecommendReview,
		}
	}
	rep.AIAnalysis = analysis

	return rep
}

// summarizeFailures builds a short mechanical summary of failed rules, used
// when the analyzer cannot provide one.
func summarizeFailures(findings []invoice.RuleFinding) string {
	failed := 0
	first := ""
	for _, f := range findings {
		if f.Status == invoice.FindingFailed {
			if failed == 0 {
				first = f.RuleName
			}
			failed++
		}
	}
	switch failed {
	case 0:
		return "No rule failures."
	case 1:
		return fmt.Sprintf("1 rule failed: %s.", first)
	default:
		return fmt.Sprintf("%d rules failed, starting with %s.", failed, first)
	}
}
