package vector

import (
	"context"
	"sync"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// RecordingIndex is an in-memory Index for tests. It records every call and
// can be primed to fail.
type RecordingIndex struct {
	mu      sync.Mutex
	reports map[string]*invoice.Report
	Err     error
}

// NewRecordingIndex creates an empty recording index.
func NewRecordingIndex() *RecordingIndex {
	return &RecordingIndex{reports: make(map[string]*invoice.Report)}
}

func (r *RecordingIndex) IndexInvoice(ctx context.Context, id string, report *invoice.Report) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[id] = report
	return nil
}

func (r *RecordingIndex) Search(ctx context.Context, query string, topK int) (string, error) {
	return "", r.Err
}

func (r *RecordingIndex) Close() error { return nil }

// Indexed returns the report stored for an invoice ID, or nil.
func (r *RecordingIndex) Indexed(id string) *invoice.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[id]
}

// Len returns how many invoices have been indexed.
func (r *RecordingIndex) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}
