package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/invaudit/config"
	"github.com/auditkit/invaudit/pkg/erp/erpserver"
	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/report"
)

// testDeps wires a config rooted in a temp dir against a live mock ERP.
func testDeps(t *testing.T) (*Deps, *config.Config) {
	t.Helper()

	srv := httptest.NewServer(erpserver.New(erpserver.SampleStore(), logging.NewNopLogger()).Router())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig(t.TempDir())
	cfg.ERP.BaseURL = srv.URL
	cfg.RulesPath = ""

	return &Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
	}, cfg
}

func execute(t *testing.T, deps *Deps, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// cleanInvoiceJSON matches the sample ERP data set, so every check passes.
const cleanInvoiceJSON = `{
	"invoice_id": "INV-2024-001",
	"vendor_name": "Tech Solutions Ltd.",
	"currency": "USD",
	"subtotal": 100.0,
	"tax_amount": 10.0,
	"total_amount": 110.0,
	"po_number": "PO-98765",
	"line_items": [
		{"item_id": "SKU-A123", "description": "Widget", "quantity": 2, "unit_price": 50.0, "line_total": 100.0}
	]
}`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, DefaultDeps(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "invaudit")
}

func TestProcessCommandAutoAccepts(t *testing.T) {
	deps, cfg := testDeps(t)

	doc := filepath.Join(cfg.Directories.Incoming, "inv_001.json")
	require.NoError(t, os.MkdirAll(cfg.Directories.Incoming, 0o755))
	require.NoError(t, os.WriteFile(doc, []byte(cleanInvoiceJSON), 0o644))

	out, err := execute(t, deps, "process", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "auto-accepted")

	rep, err := report.ReadJSON(filepath.Join(cfg.Directories.Processed, "inv_001", "inv_001_report.json"))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPassed, rep.ValidationStatus)
	assert.Zero(t, rep.FailedCount())
}

func TestProcessCommandSkipsDuplicateContent(t *testing.T) {
	deps, cfg := testDeps(t)

	require.NoError(t, os.MkdirAll(cfg.Directories.Incoming, 0o755))
	doc := filepath.Join(cfg.Directories.Incoming, "inv_dup_a.json")
	require.NoError(t, os.WriteFile(doc, []byte(cleanInvoiceJSON), 0o644))

	_, err := execute(t, deps, "process", doc)
	require.NoError(t, err)

	// Same bytes under a different name must be refused.
	copied := filepath.Join(cfg.Directories.Incoming, "inv_dup_b.json")
	require.NoError(t, os.WriteFile(copied, []byte(cleanInvoiceJSON), 0o644))

	_, err = execute(t, deps, "process", copied)
	require.Error(t, err)
	assert.True(t, iaerrors.IsDuplicate(err))
	assert.FileExists(t, copied, "the refused copy stays in the inbox")
}

func TestProcessCommandRoutesFailuresToReview(t *testing.T) {
	deps, cfg := testDeps(t)

	doc := filepath.Join(cfg.Directories.Incoming, "inv_bad.json")
	require.NoError(t, os.MkdirAll(cfg.Directories.Incoming, 0o755))
	// Unknown vendor fails the ERP tier.
	bad := []byte(`{"vendor_name": "Ghost Corp", "currency": "USD", "subtotal": 10.0,
		"tax_amount": 1.0, "total_amount": 11.0,
		"line_items": [{"item_id": "SKU-A123", "description": "W", "quantity": 1, "unit_price": 10.0, "line_total": 10.0}]}`)
	require.NoError(t, os.WriteFile(doc, bad, 0o644))

	out, err := execute(t, deps, "process", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "filed for review")

	rep, err := report.ReadJSON(filepath.Join(cfg.Directories.Review, "inv_bad", "inv_bad_report.json"))
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusFailed, rep.ValidationStatus)
}

func TestReviewCommandFinalizesDecision(t *testing.T) {
	deps, cfg := testDeps(t)

	// Get an invoice into pending_review first.
	doc := filepath.Join(cfg.Directories.Incoming, "inv_rv.json")
	require.NoError(t, os.MkdirAll(cfg.Directories.Incoming, 0o755))
	bad := []byte(`{"vendor_name": "Ghost Corp", "currency": "USD", "total_amount": 11.0,
		"line_items": [{"description": "W", "quantity": 1, "unit_price": 11.0, "line_total": 11.0}]}`)
	require.NoError(t, os.WriteFile(doc, bad, 0o644))
	_, err := execute(t, deps, "process", doc)
	require.NoError(t, err)

	out, err := execute(t, deps, "review", "inv_rv",
		"--decision", "approve", "--feedback", "verified on paper")
	require.NoError(t, err)
	assert.Contains(t, out, "APPROVE")

	rep, err := report.ReadJSON(filepath.Join(cfg.Directories.Approved, "inv_rv", "inv_rv_report.json"))
	require.NoError(t, err)
	require.NotNil(t, rep.HumanReview)
	assert.Equal(t, "verified on paper", rep.HumanReview.Feedback)
	assert.Equal(t, config.DefaultReviewerName, rep.HumanReview.Reviewer)
}

func TestReviewCommandUnknownInvoice(t *testing.T) {
	deps, _ := testDeps(t)

	_, err := execute(t, deps, "review", "nope",
		"--decision", "REJECT", "--feedback", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not pending review")
}
