package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/invaudit/pkg/audit"
	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/report"
	"github.com/auditkit/invaudit/pkg/vector"
)

type fixture struct {
	workflow *Workflow
	dirs     Dirs
	index    *vector.RecordingIndex
	sink     *audit.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		dirs: Dirs{
			Review:   filepath.Join(root, "pending_review"),
			Approved: filepath.Join(root, "approved"),
			Rejected: filepath.Join(root, "rejected"),
		},
		index: vector.NewRecordingIndex(),
		sink:  audit.NewMemorySink(),
	}
	f.workflow = New(f.dirs, f.index, f.sink, logging.NewNopLogger())
	return f
}

// seedPending writes a pending-review invoice dir with document, sidecar
// and report, the way the pipeline's fail path leaves it.
func (f *fixture) seedPending(t *testing.T, id string) *invoice.Report {
	t.Helper()
	dir := filepath.Join(f.dirs.Review, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".pdf"), []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, invoice.MetadataFilename(id)), []byte(`{"language":"en"}`), 0o644))

	rep := &invoice.Report{
		InvoiceData:      &invoice.Invoice{InvoiceID: id, VendorName: "Tech Solutions Ltd.", TotalAmount: 110},
		ValidationStatus: invoice.StatusFailed,
		ValidationRules: []invoice.RuleFinding{
			{RuleName: "Total Check", Status: invoice.FindingFailed, Message: "mismatch", Source: invoice.SourceInternal},
		},
		AIAnalysis:  invoice.AIAnalysis{Recommendation: invoice.RecommendReview},
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, report.WriteJSON(filepath.Join(dir, invoice.ReportFilename(id)), rep))
	require.NoError(t, report.WriteHTML(filepath.Join(dir, invoice.HTMLReportFilename(id)), rep))
	return rep
}

func TestFinalizeApproveRoundTrip(t *testing.T) {
	f := newFixture(t)
	original := f.seedPending(t, "inv_42")

	res, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "inv_42",
		Decision:  DecisionApprove,
		Feedback:  "checked against the purchase order",
		Reviewer:  "human_reviewer",
	})
	require.NoError(t, err)

	assert.True(t, res.Indexed)
	assert.Equal(t, filepath.Join(f.dirs.Approved, "inv_42"), res.TargetDir)
	assert.NoDirExists(t, filepath.Join(f.dirs.Review, "inv_42"))

	// Document and sidecar moved with the directory.
	assert.FileExists(t, filepath.Join(res.TargetDir, "inv_42.pdf"))
	assert.FileExists(t, filepath.Join(res.TargetDir, "inv_42.meta.json"))

	sealed, err := report.ReadJSON(filepath.Join(res.TargetDir, "inv_42_report.json"))
	require.NoError(t, err)
	require.NotNil(t, sealed.HumanReview)
	assert.Equal(t, invoice.StatusApproved, sealed.HumanReview.Decision)
	assert.Equal(t, "checked against the purchase order", sealed.HumanReview.Feedback)
	assert.Equal(t, "human_reviewer", sealed.HumanReview.Reviewer)
	assert.Equal(t, invoice.StatusApproved, sealed.ValidationStatus)

	// The finding list is untouched by finalization.
	assert.Equal(t, original.ValidationRules, sealed.ValidationRules)

	require.NotNil(t, f.index.Indexed("inv_42"))
}

func TestFinalizeRejectGoesToRejected(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "inv_43")

	res, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "inv_43",
		Decision:  DecisionReject,
		Feedback:  "amounts do not add up",
		Reviewer:  "human_reviewer",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dirs.Rejected, "inv_43"), res.TargetDir)
	sealed, err := report.ReadJSON(filepath.Join(res.TargetDir, "inv_43_report.json"))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusRejected, sealed.ValidationStatus)
}

func TestFinalizeIndexFailureDoesNotBlockMove(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "inv_44")
	f.index.Err = errors.New("index down")

	res, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "inv_44",
		Decision:  DecisionApprove,
		Feedback:  "fine",
		Reviewer:  "human_reviewer",
	})
	require.NoError(t, err, "the move must still happen")

	assert.False(t, res.Indexed)
	require.Error(t, res.IndexErr)
	assert.DirExists(t, res.TargetDir)
	assert.NoDirExists(t, filepath.Join(f.dirs.Review, "inv_44"))

	events := f.sink.ByStage(audit.StageIndexing)
	require.NotEmpty(t, events)
	assert.Equal(t, audit.StatusError, events[len(events)-1].Status)
}

func TestFinalizeMissingInvoiceFailsFast(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "ghost",
		Decision:  DecisionApprove,
		Feedback:  "x",
		Reviewer:  "human_reviewer",
	})
	require.Error(t, err)
	assert.True(t, iaerrors.IsNotFound(err))
	assert.Zero(t, f.index.Len(), "no node after LoadFiles may run")
}

func TestFinalizeMissingReportFailsFast(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.dirs.Review, "inv_45"), 0o755))

	_, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "inv_45",
		Decision:  DecisionReject,
		Feedback:  "x",
		Reviewer:  "human_reviewer",
	})
	require.Error(t, err)
	assert.True(t, iaerrors.IsNotFound(err))
}

func TestFinalizeAlreadyReviewedFailsFast(t *testing.T) {
	f := newFixture(t)
	id := "inv_46"
	rep := f.seedPending(t, id)
	rep.HumanReview = &invoice.HumanReview{
		Decision:   invoice.StatusRejected,
		Feedback:   "first pass",
		ReviewedAt: time.Now().UTC(),
		Reviewer:   "human_reviewer",
	}
	dir := filepath.Join(f.dirs.Review, id)
	require.NoError(t, report.WriteJSON(filepath.Join(dir, invoice.ReportFilename(id)), rep))

	_, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: id,
		Decision:  DecisionApprove,
		Feedback:  "second thoughts",
		Reviewer:  "human_reviewer",
	})
	require.Error(t, err)
	assert.True(t, iaerrors.IsInvalidState(err))
	assert.Zero(t, f.index.Len(), "a sealed report must not be re-indexed")

	// The invoice stays where it was.
	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr)
}

func TestFinalizeOverwritesStaleTarget(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "inv_46")

	stale := filepath.Join(f.dirs.Approved, "inv_46")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "leftover.txt"), []byte("old"), 0o644))

	_, err := f.workflow.Finalize(context.Background(), Request{
		InvoiceID: "inv_46",
		Decision:  DecisionApprove,
		Feedback:  "ok",
		Reviewer:  "human_reviewer",
	})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(stale, "leftover.txt"))
	assert.FileExists(t, filepath.Join(stale, "inv_46_report.json"))
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid", Request{InvoiceID: "a", Decision: DecisionApprove, Feedback: "ok"}, false},
		{"missing id", Request{Decision: DecisionApprove, Feedback: "ok"}, true},
		{"bad decision", Request{InvoiceID: "a", Decision: "MAYBE", Feedback: "ok"}, true},
		{"empty feedback", Request{InvoiceID: "a", Decision: DecisionReject}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, iaerrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
