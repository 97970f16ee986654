package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/invaudit/pkg/invoice"
)

func TestAnalyzeRecommendations(t *testing.T) {
	tests := []struct {
		name     string
		findings []invoice.RuleFinding
		want     invoice.Recommendation
	}{
		{"clean run approves", []invoice.RuleFinding{
			{RuleName: "Currency Check", Status: invoice.FindingPassed},
		}, invoice.RecommendApprove},
		{"internal failure goes to review", []invoice.RuleFinding{
			{RuleName: "Total Check", Status: invoice.FindingFailed, Source: invoice.SourceInternal},
		}, invoice.RecommendReview},
		{"erp failure rejects", []invoice.RuleFinding{
			{RuleName: "ERP Vendor Check", Status: invoice.FindingFailed, Source: invoice.SourceERP},
		}, invoice.RecommendReject},
		{"skips do not count as failures", []invoice.RuleFinding{
			{RuleName: "ERP PO Check", Status: invoice.FindingSkipped, Source: invoice.SourceERP},
		}, invoice.RecommendApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HeuristicAnalyzer{}.Analyze(context.Background(), &invoice.Invoice{}, tt.findings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Recommendation)
			assert.NotEmpty(t, got.Analysis)
			assert.NotEmpty(t, got.DiscrepancySummary)
		})
	}
}

func TestAnomalyCheck(t *testing.T) {
	tests := []struct {
		name      string
		inv       invoice.Invoice
		wantRules []string
	}{
		{"unremarkable invoice", invoice.Invoice{VendorName: "Tech Solutions Ltd.", TotalAmount: 110}, nil},
		{"extreme total", invoice.Invoice{VendorName: "MegaCorp", TotalAmount: 2_500_000},
			[]string{"Extreme Total Check"}},
		{"negative total", invoice.Invoice{VendorName: "MegaCorp", TotalAmount: -5},
			[]string{"Negative Amount Check"}},
		{"placeholder vendor", invoice.Invoice{VendorName: "Test Vendor", TotalAmount: 100},
			[]string{"Suspicious Vendor Check"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := HeuristicAnomalyChecker{}.Check(context.Background(), &tt.inv)
			require.NoError(t, err)

			var names []string
			for _, f := range findings {
				names = append(names, f.RuleName)
			}
			assert.Equal(t, tt.wantRules, names)
		})
	}
}
