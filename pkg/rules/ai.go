package rules

import (
	"context"

	"github.com/auditkit/invaudit/pkg/audit"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
)

// RuleAICheck is the default rule name for anomaly findings that arrive
// without one.
const RuleAICheck = "AI Check"

// checkAI runs tier 3: the anomaly checker. The tier is fail-open: an
// error from the checker (unreachable model, unparsable response) yields
// zero findings rather than a FAILED, so a flaky model cannot block an
// otherwise clean invoice. The degraded run is still visible in the audit
// log, distinct from a genuine zero-anomaly result.
func (e *Engine) checkAI(ctx context.Context, inv *invoice.Invoice) []invoice.RuleFinding {
	found, err := e.anomaly.Check(ctx, inv)
	if err != nil {
		e.logger.Warn("AI anomaly check degraded, continuing without findings",
			logging.F("invoice", inv.OriginalFilename), logging.Err(err))
		e.events.Emit(invoice.IDFromPath(inv.OriginalFilename),
			audit.StageAIValidation, audit.StatusSkipped,
			"anomaly check error: "+err.Error())
		return nil
	}

	results := make([]invoice.RuleFinding, 0, len(found))
	for _, f := range found {
		if f.RuleName == "" {
			f.RuleName = RuleAICheck
		}
		switch f.Status {
		case invoice.FindingPassed, invoice.FindingFailed, invoice.FindingSkipped:
		default:
			f.Status = invoice.FindingFailed
		}
		f.Source = invoice.SourceAI
		results = append(results, f)
	}

	if len(results) > 0 {
		e.logger.Info("AI anomaly check reported findings",
			logging.F("invoice", inv.OriginalFilename),
			logging.F("count", len(results)))
	}
	return results
}
