// Package review implements the human-review finalization workflow: load
// the pending invoice, stamp the decision onto its report, index the sealed
// report, and move the invoice directory to its terminal location.
package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/auditkit/invaudit/pkg/audit"
	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/metrics"
	"github.com/auditkit/invaudit/pkg/report"
	"github.com/auditkit/invaudit/pkg/vector"
)

// Decision is a human review verdict.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Request is one human review decision to apply.
type Request struct {
	InvoiceID string
	Decision  Decision
	// Feedback is the reviewer's justification; it must not be empty.
	Feedback string
	Reviewer string
}

// Validate checks the request before any filesystem work happens.
func (r Request) Validate() error {
	if r.InvoiceID == "" {
		return fmt.Errorf("%w: invoice id is required", iaerrors.ErrValidation)
	}
	if r.Decision != DecisionApprove && r.Decision != DecisionReject {
		return fmt.Errorf("%w: decision must be APPROVE or REJECT, got %q", iaerrors.ErrValidation, r.Decision)
	}
	if r.Feedback == "" {
		return fmt.Errorf("%w: feedback is required", iaerrors.ErrValidation)
	}
	return nil
}

// Result reports where the invoice ended up.
type Result struct {
	// TargetDir is the invoice's terminal directory.
	TargetDir string

	// Indexed reports whether the sealed report reached the vector index.
	// False with a non-nil IndexErr means the index call failed; the move
	// still happened.
	Indexed  bool
	IndexErr error
}

// Dirs is the directory taxonomy the workflow moves invoices between.
type Dirs struct {
	Review   string
	Approved string
	Rejected string
}

// Workflow applies human review decisions.
type Workflow struct {
	dirs   Dirs
	index  vector.Index
	events audit.Sink
	logger logging.Logger
	now    func() time.Time
}

// New creates a review workflow.
func New(dirs Dirs, index vector.Index, events audit.Sink, logger logging.Logger) *Workflow {
	if index == nil {
		index = vector.NopIndex{}
	}
	if events == nil {
		events = audit.NopSink{}
	}
	return &Workflow{
		dirs:   dirs,
		index:  index,
		events: events,
		logger: logger.With(logging.F("component", "review")),
		now:    time.Now,
	}
}

// Finalize runs the four workflow nodes for one decision. Only the load
// step fails fast; an index failure is recorded on the Result and the move
// still runs, because a filed-but-unindexed invoice beats one stuck in
// pending review.
func (w *Workflow) Finalize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := w.logger.With(logging.F("invoice_id", req.InvoiceID))
	w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusStarted, string(req.Decision))

	// Node 1: LoadFiles.
	srcDir := filepath.Join(w.dirs.Review, req.InvoiceID)
	reportPath := filepath.Join(srcDir, invoice.ReportFilename(req.InvoiceID))
	if _, err := os.Stat(srcDir); err != nil {
		err = fmt.Errorf("%w: invoice %s is not pending review", iaerrors.ErrNotFound, req.InvoiceID)
		w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusError, err.Error())
		return nil, err
	}
	rep, err := report.ReadJSON(reportPath)
	if err != nil {
		err = fmt.Errorf("%w: report for invoice %s: %v", iaerrors.ErrNotFound, req.InvoiceID, err)
		w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusError, err.Error())
		return nil, err
	}

	if rep.HumanReview != nil {
		err = fmt.Errorf("%w: invoice %s already carries a review decision", iaerrors.ErrInvalidState, req.InvoiceID)
		w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusError, err.Error())
		return nil, err
	}

	// Node 2: UpdateReport. The report is sealed after this stamp.
	rep.HumanReview = &invoice.HumanReview{
		Decision:   invoice.ValidationStatus(req.Decision),
		Feedback:   req.Feedback,
		ReviewedAt: w.now().UTC(),
		Reviewer:   req.Reviewer,
	}
	rep.ValidationStatus = invoice.ValidationStatus(req.Decision)

	targetBase := w.dirs.Rejected
	if req.Decision == DecisionApprove {
		targetBase = w.dirs.Approved
	}
	res := &Result{TargetDir: filepath.Join(targetBase, req.InvoiceID)}

	// Node 3: IndexInvoice. Failure is recorded, never blocking.
	w.events.Emit(req.InvoiceID, audit.StageIndexing, audit.StatusStarted, "")
	if err := w.index.IndexInvoice(ctx, req.InvoiceID, rep); err != nil {
		res.IndexErr = err
		logger.Error("Indexing reviewed invoice failed, filing anyway", logging.Err(err))
		w.events.Emit(req.InvoiceID, audit.StageIndexing, audit.StatusError, err.Error())
	} else {
		res.Indexed = true
		w.events.Emit(req.InvoiceID, audit.StageIndexing, audit.StatusCompleted, "")
	}

	// Node 4: MoveFiles. A stale directory at the target is replaced.
	if err := os.MkdirAll(targetBase, 0o755); err != nil {
		return res, fmt.Errorf("creating %s: %w", targetBase, err)
	}
	if err := os.RemoveAll(res.TargetDir); err != nil {
		return res, fmt.Errorf("clearing stale target dir: %w", err)
	}
	if err := os.Rename(srcDir, res.TargetDir); err != nil {
		w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusError, err.Error())
		return res, fmt.Errorf("moving invoice dir: %w", err)
	}

	// Rewrite both report artifacts in place so the sealed content is
	// what lives in the terminal directory.
	sealedJSON := filepath.Join(res.TargetDir, invoice.ReportFilename(req.InvoiceID))
	if err := report.WriteJSON(sealedJSON, rep); err != nil {
		return res, err
	}
	if err := report.WriteHTML(filepath.Join(res.TargetDir, invoice.HTMLReportFilename(req.InvoiceID)), rep); err != nil {
		return res, err
	}

	metrics.ReviewsFinalized.WithLabelValues(string(req.Decision)).Inc()
	w.events.Emit(req.InvoiceID, audit.StageReview, audit.StatusCompleted, res.TargetDir)
	logger.Info("Review finalized",
		logging.F("decision", string(req.Decision)),
		logging.F("target", res.TargetDir),
		logging.F("indexed", res.Indexed))
	return res, nil
}
