package rules

import (
	"context"

	"github.com/auditkit/invaudit/pkg/audit"
	"github.com/auditkit/invaudit/pkg/erp"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
)

// Rule names produced by the engine.
const (
	RuleRequiredHeader    = "Required Header Fields"
	RuleRequiredLineItems = "Required Line Item Fields"
	RuleCurrency          = "Currency Check"
	RuleSubtotal          = "Subtotal Check"
	RuleTotal             = "Total Check"
	RuleFinancialCalc     = "Financial Calculation"
	RuleERPVendor         = "ERP Vendor Check"
	RuleVendorCurrency    = "Vendor Currency Check"
	RuleERPPO             = "ERP PO Check"
	RulePOVendorMatch     = "PO-Vendor Match"
	RuleERPValidation     = "ERP Validation"
)

// ERPService is the subset of the ERP client the engine depends on.
type ERPService interface {
	GetVendorByName(ctx context.Context, name string) (*erp.Vendor, error)
	GetPurchaseOrder(ctx context.Context, poNumber string) (*erp.PurchaseOrder, error)
	GetSKU(ctx context.Context, itemCode string) (*erp.SKU, error)
}

// AnomalyChecker is the AI collaborator contract for the third tier. It
// returns zero or more anomaly findings for an invoice; errors (including
// an unparsable model response) are treated as fail-open by the engine.
type AnomalyChecker interface {
	Check(ctx context.Context, inv *invoice.Invoice) ([]invoice.RuleFinding, error)
}

// Engine evaluates an invoice against the three rule tiers and returns the
// ordered finding sequence: Internal findings, then ERP, then AI, each in
// generation order, with no deduplication.
type Engine struct {
	rules   Rules
	erp     ERPService
	anomaly AnomalyChecker
	logger  logging.Logger
	events  audit.Sink
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithAuditSink sets the audit event sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(e *Engine) { e.events = sink }
}

// NewEngine creates a validation engine. erpService and anomaly may not be
// nil; inject stubs in tests.
func NewEngine(rules Rules, erpService ERPService, anomaly AnomalyChecker, opts ...Option) *Engine {
	e := &Engine{
		rules:   rules,
		erp:     erpService,
		anomaly: anomaly,
		logger:  logging.MustGlobal(),
		events:  audit.NopSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.F("component", "rule_engine"))
	return e
}

// Validate runs all three tiers for one invoice. Tiers are independent:
// an earlier tier's failures never short-circuit a later tier.
func (e *Engine) Validate(ctx context.Context, inv *invoice.Invoice) []invoice.RuleFinding {
	e.logger.Debug("Starting validation", logging.F("invoice", inv.OriginalFilename))

	findings := e.checkInternal(inv)
	findings = append(findings, e.checkERP(ctx, inv)...)
	findings = append(findings, e.checkAI(ctx, inv)...)

	failed := 0
	for _, f := range findings {
		if f.Status == invoice.FindingFailed {
			failed++
		}
	}
	if failed == 0 {
		e.logger.Info("Validation passed", logging.F("invoice", inv.OriginalFilename))
	} else {
		e.logger.Info("Validation failed",
			logging.F("invoice", inv.OriginalFilename),
			logging.F("failed_checks", failed))
	}

	return findings
}

// OverallStatus derives the validation status from a finding sequence:
// FAILED iff at least one finding FAILED. SKIPPED and PASSED do not count.
func OverallStatus(findings []invoice.RuleFinding) invoice.ValidationStatus {
	for _, f := range findings {
		if f.Status == invoice.FindingFailed {
			return invoice.StatusFailed
		}
	}
	return invoice.StatusPassed
}

func finding(name string, status invoice.FindingStatus, message string, source invoice.FindingSource) invoice.RuleFinding {
	return invoice.RuleFinding{
		RuleName: name,
		Status:   status,
		Message:  message,
		Source:   source,
	}
}
