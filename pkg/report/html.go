package report

import (
	"fmt"
	"html/template"
	"os"

	"github.com/auditkit/invaudit/pkg/invoice"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"statusClass": statusClass,
	"money":       money,
	"inc":         func(i int) int { return i + 1 },
	"deref":       func(v *float64) float64 { return *v },
}).Parse(reportHTML))

// WriteHTML renders the report as a standalone HTML page for reviewers.
func WriteHTML(path string, rep *invoice.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating html report: %w", err)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, rep); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

func statusClass(s any) string {
	switch fmt.Sprint(s) {
	// FindingStatus and ValidationStatus share the PASSED/FAILED strings,
	// so each literal may appear only once.
	case string(invoice.FindingPassed), string(invoice.StatusApproved):
		return "passed"
	case string(invoice.FindingFailed), string(invoice.StatusRejected):
		return "failed"
	case string(invoice.FindingSkipped), string(invoice.RecommendReview):
		return "skipped"
	default:
		return "neutral"
	}
}

func money(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", *v)
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice Audit Report {{with .InvoiceData}}{{.InvoiceID}}{{end}}</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
  h1 { font-size: 1.4rem; }
  .badge { display: inline-block; padding: 0.2rem 0.7rem; border-radius: 4px; color: #fff; font-weight: 600; }
  .badge.passed { background: #2e7d32; }
  .badge.failed { background: #c62828; }
  .badge.skipped { background: #f9a825; color: #222; }
  .badge.neutral { background: #607d8b; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
  th, td { border: 1px solid #ddd; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
  th { background: #f5f5f5; }
  tr.failed td { background: #fdecea; }
  tr.skipped td { background: #fff8e1; }
  .section { margin-top: 1.5rem; }
  .muted { color: #777; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Invoice Audit Report
  <span class="badge {{statusClass .ValidationStatus}}">{{.ValidationStatus}}</span>
</h1>
<p class="muted">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>

{{with .InvoiceData}}
<div class="section">
<h2>Invoice</h2>
<table>
  <tr><th>Invoice ID</th><td>{{.InvoiceID}}</td><th>Vendor</th><td>{{.VendorName}}</td></tr>
  <tr><th>PO Number</th><td>{{.PONumber}}</td><th>Currency</th><td>{{.Currency}}</td></tr>
  <tr><th>Subtotal</th><td>{{money .Subtotal}}</td><th>Tax</th><td>{{money .TaxAmount}}</td></tr>
  <tr><th>Total</th><td>{{printf "%.2f" .TotalAmount}}</td><th>Source File</th><td>{{.OriginalFilename}}</td></tr>
</table>

{{if .LineItems}}
<table>
  <tr><th>#</th><th>SKU</th><th>Description</th><th>Qty</th><th>Unit Price</th><th>Line Total</th></tr>
  {{range $i, $li := .LineItems}}
  <tr>
    <td>{{inc $i}}</td><td>{{$li.ItemID}}</td><td>{{$li.Description}}</td>
    <td>{{$li.Quantity}}</td><td>{{printf "%.2f" $li.UnitPrice}}</td><td>{{printf "%.2f" $li.LineTotal}}</td>
  </tr>
  {{end}}
</table>
{{end}}
</div>
{{end}}

<div class="section">
<h2>Validation Findings</h2>
<table>
  <tr><th>Rule</th><th>Status</th><th>Source</th><th>Message</th></tr>
  {{range .ValidationRules}}
  <tr class="{{statusClass .Status}}">
    <td>{{.RuleName}}</td><td>{{.Status}}</td><td>{{.Source}}</td><td>{{.Message}}</td>
  </tr>
  {{end}}
</table>
</div>

<div class="section">
<h2>AI Analysis</h2>
<p><strong>Recommendation:</strong>
  <span class="badge {{statusClass .AIAnalysis.Recommendation}}">{{.AIAnalysis.Recommendation}}</span></p>
<p>{{.AIAnalysis.Analysis}}</p>
{{if .AIAnalysis.DiscrepancySummary}}<p class="muted">{{.AIAnalysis.DiscrepancySummary}}</p>{{end}}
</div>

{{with .HumanReview}}
<div class="section">
<h2>Human Review</h2>
<p><strong>Decision:</strong>
  <span class="badge {{statusClass .Decision}}">{{.Decision}}</span>
  by {{.Reviewer}} at {{.ReviewedAt.Format "2006-01-02 15:04:05 MST"}}</p>
{{if .Feedback}}<p>{{.Feedback}}</p>{{end}}
</div>
{{end}}

{{if .TranslationConfidence}}
<p class="muted">Translation confidence: {{printf "%.2f" (deref .TranslationConfidence)}}</p>
{{end}}
</body>
</html>
`
