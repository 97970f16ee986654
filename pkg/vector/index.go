// Package vector defines the contract for the similarity index that stores
// finalized invoices for later retrieval. The pipeline indexes auto-passed
// invoices; the review workflow indexes human-approved and rejected ones.
package vector

import (
	"context"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// Index persists finalized invoices for similarity search. Implementations
// must tolerate re-indexing the same invoice ID; the last write wins.
type Index interface {
	// IndexInvoice stores the invoice together with its final report. An
	// error here is reported by the caller but never blocks filing.
	IndexInvoice(ctx context.Context, id string, report *invoice.Report) error

	// Search returns a text rendering of the invoices most similar to the
	// query, for retrieval front-ends.
	Search(ctx context.Context, query string, topK int) (string, error)

	Close() error
}

// NopIndex discards everything. Used when no index is configured.
type NopIndex struct{}

func (NopIndex) IndexInvoice(ctx context.Context, id string, report *invoice.Report) error {
	return nil
}

func (NopIndex) Search(ctx context.Context, query string, topK int) (string, error) {
	return "", nil
}

func (NopIndex) Close() error { return nil }
