// Package invoice defines the domain model shared by the audit pipeline:
// extracted invoice data, validation findings, and the audit report.
package invoice

import (
	"path/filepath"
	"strings"
	"time"
)

// ValidationStatus is the overall result of a validation run, or the
// human decision once a review has been finalized.
type ValidationStatus string

const (
	StatusPassed ValidationStatus = "PASSED"
	StatusFailed ValidationStatus = "FAILED"

	// Human decisions stamped onto a report by the review workflow.
	StatusApproved ValidationStatus = "APPROVE"
	StatusRejected ValidationStatus = "REJECT"
)

// FindingStatus is the result of one validation rule.
type FindingStatus string

const (
	FindingPassed  FindingStatus = "PASSED"
	FindingFailed  FindingStatus = "FAILED"
	FindingSkipped FindingStatus = "SKIPPED"
)

// FindingSource identifies which rule tier produced a finding.
type FindingSource string

const (
	SourceInternal FindingSource = "Internal"
	SourceERP      FindingSource = "ERP"
	SourceAI       FindingSource = "AI"
)

// Recommendation is the AI analysis verdict attached to every report.
type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendReject  Recommendation = "REJECT"
	RecommendReview  Recommendation = "REVIEW"
)

// LineItem is a single billed item on an invoice.
type LineItem struct {
	ItemID      string  `json:"item_id"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Invoice is the extracted (and, where needed, translated) invoice data.
// It is the central data structure of the audit workflow. Optional fields
// are pointers so that "absent" and "zero" stay distinguishable after
// extraction from unreliable source documents.
type Invoice struct {
	InvoiceID    string `json:"invoice_id,omitempty"`
	VendorName   string `json:"vendor_name"`
	CustomerName string `json:"customer_name,omitempty"`
	InvoiceDate  string `json:"invoice_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`

	Subtotal       *float64 `json:"subtotal,omitempty"`
	TaxAmount      *float64 `json:"tax_amount,omitempty"`
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
	TotalAmount    float64  `json:"total_amount"`
	Currency       string   `json:"currency,omitempty"`

	PONumber string `json:"po_number,omitempty"`

	LineItems []LineItem `json:"line_items"`

	OriginalFilename string `json:"original_filename"`

	// Error carries the extraction failure message when no usable data
	// could be produced; downstream nodes treat such invoices as stubs.
	Error string `json:"error,omitempty"`
}

// RuleFinding is one rule-evaluation result. Findings are immutable once
// produced; a validation run yields an ordered sequence with tier order
// preserved (Internal, then ERP, then AI) and no deduplication.
type RuleFinding struct {
	RuleName string        `json:"rule_name"`
	Status   FindingStatus `json:"status"`
	Message  string        `json:"message"`
	Source   FindingSource `json:"source"`
}

// AIAnalysis is the structured analysis block attached to every report.
type AIAnalysis struct {
	Analysis           string         `json:"analysis"`
	DiscrepancySummary string         `json:"discrepancy_summary"`
	Recommendation     Recommendation `json:"recommendation"`
}

// HumanReview records the outcome of a human review decision.
type HumanReview struct {
	Decision   ValidationStatus `json:"decision"`
	Feedback   string           `json:"feedback"`
	ReviewedAt time.Time        `json:"reviewed_at"`
	Reviewer   string           `json:"reviewed_by"`
}

// Report is the durable audit artifact produced once per invoice. It is
// mutated exactly once more, by the review workflow, to attach HumanReview
// and flip ValidationStatus to the human decision.
type Report struct {
	InvoiceData           *Invoice         `json:"invoice_data"`
	ValidationStatus      ValidationStatus `json:"validation_status"`
	ValidationRules       []RuleFinding    `json:"validation_rules"`
	AIAnalysis            AIAnalysis       `json:"ai_analysis"`
	HumanReview           *HumanReview     `json:"human_review"`
	TranslationConfidence *float64         `json:"translation_confidence"`
	GeneratedAt           time.Time        `json:"report_generated_at"`
}

// FailedCount returns the number of FAILED findings on the report.
func (r *Report) FailedCount() int {
	n := 0
	for _, f := range r.ValidationRules {
		if f.Status == FindingFailed {
			n++
		}
	}
	return n
}

// IDFromPath derives the invoice ID (the filename stem) from a document path.
// The ID is the primary key across all directories and the report.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MetadataFilename returns the sidecar filename for an invoice ID.
func MetadataFilename(id string) string {
	return id + ".meta.json"
}

// ReportFilename returns the JSON report filename for an invoice ID.
func ReportFilename(id string) string {
	return id + "_report.json"
}

// HTMLReportFilename returns the HTML report filename for an invoice ID.
func HTMLReportFilename(id string) string {
	return id + "_report.html"
}

// Metadata is the sidecar metadata delivered alongside an invoice document.
// At minimum it carries the source language hint for the translation step.
type Metadata struct {
	Language   string `json:"language,omitempty"`
	Sender     string `json:"sender,omitempty"`
	ReceivedAt string `json:"received_at,omitempty"`
}
