package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"pdf", "/data/incoming/INV_EN_001.pdf", "INV_EN_001"},
		{"docx", "INV-2025-042.docx", "INV-2025-042"},
		{"no extension", "/tmp/invoice", "invoice"},
		{"dotted stem", "acme.inv.001.png", "acme.inv.001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDFromPath(tt.path))
		})
	}
}

func TestArtifactFilenames(t *testing.T) {
	assert.Equal(t, "INV_001.meta.json", MetadataFilename("INV_001"))
	assert.Equal(t, "INV_001_report.json", ReportFilename("INV_001"))
	assert.Equal(t, "INV_001_report.html", HTMLReportFilename("INV_001"))
}

func TestReportFailedCount(t *testing.T) {
	r := &Report{
		ValidationRules: []RuleFinding{
			{RuleName: "Currency Check", Status: FindingPassed},
			{RuleName: "ERP Vendor Check", Status: FindingFailed},
			{RuleName: "ERP PO Check", Status: FindingSkipped},
			{RuleName: "Total Check", Status: FindingFailed},
		},
	}
	assert.Equal(t, 2, r.FailedCount())

	empty := &Report{}
	assert.Equal(t, 0, empty.FailedCount())
}
