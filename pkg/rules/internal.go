package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/auditkit/invaudit/pkg/invoice"
)

// checkInternal runs tier 1: pure consistency checks with no I/O.
func (e *Engine) checkInternal(inv *invoice.Invoice) []invoice.RuleFinding {
	var results []invoice.RuleFinding

	// Required header fields.
	var missing []string
	for _, field := range e.rules.RequiredFields.Header {
		if !headerFieldPresent(inv, field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		results = append(results, finding(RuleRequiredHeader, invoice.FindingFailed,
			"Missing required header fields: "+strings.Join(missing, ", "), invoice.SourceInternal))
	} else {
		results = append(results, finding(RuleRequiredHeader, invoice.FindingPassed,
			"All required header fields are present.", invoice.SourceInternal))
	}

	// Required line item fields.
	if len(inv.LineItems) == 0 {
		results = append(results, finding(RuleRequiredLineItems, invoice.FindingFailed,
			"Invoice has no line items.", invoice.SourceInternal))
	} else {
		missingItemFields := false
		for _, item := range inv.LineItems {
			for _, field := range e.rules.RequiredFields.LineItem {
				if !lineItemFieldPresent(item, field) {
					missingItemFields = true
					break
				}
			}
			if missingItemFields {
				break
			}
		}
		if missingItemFields {
			results = append(results, finding(RuleRequiredLineItems, invoice.FindingFailed,
				"One or more line items are missing required fields.", invoice.SourceInternal))
		} else {
			results = append(results, finding(RuleRequiredLineItems, invoice.FindingPassed,
				"All line items have required fields.", invoice.SourceInternal))
		}
	}

	// Currency membership.
	if !e.rules.AcceptsCurrency(inv.Currency) {
		results = append(results, finding(RuleCurrency, invoice.FindingFailed,
			fmt.Sprintf("Invalid or unaccepted currency: %s", inv.Currency), invoice.SourceInternal))
	} else {
		results = append(results, finding(RuleCurrency, invoice.FindingPassed,
			fmt.Sprintf("Currency '%s' is valid.", inv.Currency), invoice.SourceInternal))
	}

	// Financial equalities, within the configured tolerance.
	results = append(results, e.checkFinancials(inv)...)

	return results
}

// checkFinancials verifies sum(line_total) ≈ subtotal and
// subtotal + tax ≈ total. A deviation of exactly the tolerance passes.
// Non-finite values produce one FAILED finding naming the calculation
// error instead of propagating NaN through the comparisons.
func (e *Engine) checkFinancials(inv *invoice.Invoice) []invoice.RuleFinding {
	var results []invoice.RuleFinding
	delta := e.rules.Tolerances.FinancialRoundingDelta

	lineSum := 0.0
	for _, item := range inv.LineItems {
		lineSum += item.LineTotal
	}
	subtotal := floatOrZero(inv.Subtotal)
	tax := floatOrZero(inv.TaxAmount)
	total := inv.TotalAmount

	for _, v := range []float64{lineSum, subtotal, tax, total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return append(results, finding(RuleFinancialCalc, invoice.FindingFailed,
				"Non-numeric values in subtotal/tax/total.", invoice.SourceInternal))
		}
	}

	if math.Abs(lineSum-subtotal) > delta {
		results = append(results, finding(RuleSubtotal, invoice.FindingFailed,
			fmt.Sprintf("Subtotal mismatch. Line sum = %.2f, but subtotal = %.2f", lineSum, subtotal),
			invoice.SourceInternal))
	} else {
		results = append(results, finding(RuleSubtotal, invoice.FindingPassed,
			"Subtotal matches.", invoice.SourceInternal))
	}

	if math.Abs((subtotal+tax)-total) > delta {
		results = append(results, finding(RuleTotal, invoice.FindingFailed,
			fmt.Sprintf("Total mismatch. Subtotal+Tax = %.2f, but total = %.2f", subtotal+tax, total),
			invoice.SourceInternal))
	} else {
		results = append(results, finding(RuleTotal, invoice.FindingPassed,
			"Total is correct.", invoice.SourceInternal))
	}

	return results
}

func headerFieldPresent(inv *invoice.Invoice, field string) bool {
	switch field {
	case "invoice_id":
		return inv.InvoiceID != ""
	case "vendor_name":
		return inv.VendorName != ""
	case "customer_name":
		return inv.CustomerName != ""
	case "invoice_date":
		return inv.InvoiceDate != ""
	case "due_date":
		return inv.DueDate != ""
	case "subtotal":
		return inv.Subtotal != nil
	case "tax_amount":
		return inv.TaxAmount != nil
	case "total_amount":
		return inv.TotalAmount != 0
	case "currency":
		return inv.Currency != ""
	case "po_number":
		return inv.PONumber != ""
	default:
		// Unknown rule fields count as absent so a typo in rules.yaml
		// surfaces as a failing check rather than silently passing.
		return false
	}
}

func lineItemFieldPresent(item invoice.LineItem, field string) bool {
	switch field {
	case "item_id":
		return item.ItemID != ""
	case "description":
		return item.Description != ""
	case "quantity":
		return item.Quantity != 0
	case "unit_price":
		return item.UnitPrice != 0
	case "line_total":
		return item.LineTotal != 0
	default:
		return false
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
