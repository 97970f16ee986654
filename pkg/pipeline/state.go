// Package pipeline implements the per-invoice processing state machine:
// Extraction, Translation, Validation, ReportGeneration, then routing to
// either SaveAndIndex (auto-accepted) or SaveAndFail (pending human review).
// Every run reaches ReportGeneration, so an audit report exists even when
// extraction produced nothing usable.
package pipeline

import (
	"context"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// TextExtractor extracts raw text from a document. Empty text is a valid
// "no content" result, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// StructuredExtractor turns raw document text into structured invoice
// fields.
type StructuredExtractor interface {
	ExtractStructured(ctx context.Context, text, filename string) (*invoice.Invoice, error)
}

// Translation is one translated text with the translator's confidence.
// Confidence is nil when the back-end does not report one.
type Translation struct {
	Text       string
	Confidence *float64
}

// Translator translates a single text into English.
type Translator interface {
	Translate(ctx context.Context, text string) (Translation, error)
}

// State is the mutable record threaded through one invoice's pipeline run.
// It is owned exclusively by the worker goroutine processing the invoice;
// nodes only add fields, they never un-set what an earlier node produced.
type State struct {
	// FilePath is the document's current location in the inbox.
	FilePath string

	// InvoiceID is the filename stem, the primary key everywhere.
	InvoiceID string

	// Metadata is the sidecar content; zero value when no sidecar exists.
	Metadata invoice.Metadata

	// Extracted holds the raw structured extraction result.
	Extracted *invoice.Invoice

	// Invoice is the canonical (translated where needed) invoice data fed
	// to validation. Nil when extraction failed.
	Invoice *invoice.Invoice

	// TranslationConfidence is the mean confidence across translated
	// fields, 1.0 for the English fast path, nil when unknown.
	TranslationConfidence *float64

	// Findings is the ordered rule-evaluation result.
	Findings []invoice.RuleFinding

	// ValidationStatus is derived from Findings.
	ValidationStatus invoice.ValidationStatus

	// Report is the assembled audit artifact.
	Report *invoice.Report

	// OutputDir is the invoice directory the artifacts were filed into.
	OutputDir string

	// Indexed reports whether the sealed report reached the vector index.
	Indexed bool

	// Err is the first unrecoverable problem hit during the run. Once set,
	// downstream nodes trust no business field except for routing.
	Err error
}

// Failed reports whether the run has recorded an error.
func (s *State) Failed() bool { return s.Err != nil }

// Outcome is the routing decision for a finished validation run.
type Outcome string

const (
	// OutcomeSuccess files the invoice as auto-accepted and indexes it.
	OutcomeSuccess Outcome = "success"

	// OutcomeFail files the invoice for human review.
	OutcomeFail Outcome = "fail"
)

// Route decides the terminal path for a state. Pure function: an error
// always wins over a PASSED status; only an error-free PASSED run is
// auto-accepted.
func Route(s *State) Outcome {
	if s.Err != nil {
		return OutcomeFail
	}
	if s.ValidationStatus == invoice.StatusPassed {
		return OutcomeSuccess
	}
	return OutcomeFail
}
