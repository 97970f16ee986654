package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// WriteJSON persists a report to disk as indented JSON.
func WriteJSON(path string, rep *invoice.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadJSON loads a report from disk.
func ReadJSON(path string) (*invoice.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var rep invoice.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return &rep, nil
}
