// Package audit provides the append-only event log for the invoice pipeline.
// Every pipeline node, the ingestion monitor, and the review workflow emit
// one structured event per state change; consumers tail the JSONL file for
// live monitoring.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Status values for audit events.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusError     = "error"
	StatusSkipped   = "skipped"
)

// Well-known stage names emitted by the core workflows.
const (
	StageDetect       = "detect"
	StageDuplicate    = "duplicate_check"
	StageExtraction   = "extraction"
	StageTranslation  = "translation"
	StageValidation   = "validation"
	StageAIValidation = "ai_validation"
	StageReport       = "report_generation"
	StageRouting      = "routing"
	StageIndexing     = "indexing"
	StageSaveIndex    = "save_and_index"
	StageSaveFail     = "save_and_fail"
	StageWorkflow     = "workflow"
	StageReview       = "review"
)

// Event is one append-only audit record.
type Event struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	InvoiceID string    `json:"invoice_id"`
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// NewEvent builds an Event with a fresh ID and the current timestamp.
func NewEvent(invoiceID, stage, status, message string) Event {
	return Event{
		EventID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
		InvoiceID: invoiceID,
		Stage:     stage,
		Status:    status,
		Message:   message,
	}
}

// Sink receives audit events. Implementations must be safe for use from
// multiple worker goroutines.
type Sink interface {
	// Emit queues an event for persistence. Emit never blocks the caller
	// on I/O and never fails the emitting workflow.
	Emit(invoiceID, stage, status, message string)

	// Flush blocks until all queued events are written.
	Flush() error

	// Close flushes pending events and shuts the sink down.
	Close() error
}

// NopSink discards all events. Useful as a default when auditing is not
// configured.
type NopSink struct{}

func (NopSink) Emit(invoiceID, stage, status, message string) {}
func (NopSink) Flush() error                                  { return nil }
func (NopSink) Close() error                                  { return nil }
