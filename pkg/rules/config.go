// Package rules implements the three-tier validation engine that audits an
// extracted invoice: internal consistency checks, ERP master-data checks,
// and AI anomaly checks. Tiers run unconditionally and in fixed order; a
// failure in an earlier tier never skips a later one, so the report carries
// the maximum amount of information.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the validation rules document, loaded from rules.yaml.
type Rules struct {
	RequiredFields struct {
		// Header lists invoice header fields that must be present.
		Header []string `yaml:"header"`
		// LineItem lists fields every line item must carry.
		LineItem []string `yaml:"line_item"`
	} `yaml:"required_fields"`

	// AcceptedCurrencies is the closed set of allowed currency codes.
	AcceptedCurrencies []string `yaml:"accepted_currencies"`

	Tolerances struct {
		// FinancialRoundingDelta is the absolute tolerance applied to the
		// subtotal and total equality checks.
		FinancialRoundingDelta float64 `yaml:"financial_rounding_delta"`
	} `yaml:"tolerances"`
}

// DefaultRules returns the built-in rules document.
func DefaultRules() Rules {
	var r Rules
	r.RequiredFields.Header = []string{"vendor_name", "total_amount", "currency"}
	r.RequiredFields.LineItem = []string{"description", "quantity", "unit_price", "line_total"}
	r.AcceptedCurrencies = []string{"USD", "EUR", "GBP"}
	r.Tolerances.FinancialRoundingDelta = 0.02
	return r
}

// LoadRules reads a rules document from a YAML file. Fields absent from the
// file keep their defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parsing rules file: %w", err)
	}

	if r.Tolerances.FinancialRoundingDelta < 0 {
		return r, fmt.Errorf("tolerances.financial_rounding_delta must not be negative")
	}
	return r, nil
}

// AcceptsCurrency reports whether the currency code is in the accepted set.
func (r Rules) AcceptsCurrency(code string) bool {
	for _, c := range r.AcceptedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
