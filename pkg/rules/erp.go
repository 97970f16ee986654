package rules

import (
	"context"
	"fmt"

	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
)

// checkERP runs tier 2: master-data lookups against the ERP service.
//
// The check sequence mirrors the audit procedure: vendor existence, vendor
// currency, PO existence (SKIPPED when the invoice has no PO number), PO
// vendor consistency, then per-line-item SKU existence and PO membership.
// A vendor that is unknown to the ERP ends the tier early; nothing else in
// it could be verified anyway. Any transport or decode error degrades to a
// single FAILED finding describing the error; it never aborts tier 1 or 3.
func (e *Engine) checkERP(ctx context.Context, inv *invoice.Invoice) []invoice.RuleFinding {
	var results []invoice.RuleFinding

	if inv.VendorName == "" {
		return append(results, finding(RuleERPVendor, invoice.FindingFailed,
			"Vendor missing.", invoice.SourceERP))
	}

	vendor, err := e.erp.GetVendorByName(ctx, inv.VendorName)
	if iaerrors.IsNotFound(err) {
		return append(results, finding(RuleERPVendor, invoice.FindingFailed,
			fmt.Sprintf("Vendor '%s' not in ERP.", inv.VendorName), invoice.SourceERP))
	}
	if err != nil {
		return append(results, e.erpError(err))
	}
	results = append(results, finding(RuleERPVendor, invoice.FindingPassed,
		fmt.Sprintf("Vendor '%s' exists. ID=%s", inv.VendorName, vendor.VendorID), invoice.SourceERP))

	if vendor.Currency != inv.Currency {
		results = append(results, finding(RuleVendorCurrency, invoice.FindingFailed,
			fmt.Sprintf("Invoice currency %s does not match vendor currency %s", inv.Currency, vendor.Currency),
			invoice.SourceERP))
	} else {
		results = append(results, finding(RuleVendorCurrency, invoice.FindingPassed,
			"Currency matches vendor.", invoice.SourceERP))
	}

	po, poResults, err := e.checkPO(ctx, inv, vendor.VendorID)
	results = append(results, poResults...)
	if err != nil {
		return append(results, e.erpError(err))
	}

	itemResults, err := e.checkLineItems(ctx, inv, po)
	results = append(results, itemResults...)
	if err != nil {
		results = append(results, e.erpError(err))
	}

	return results
}

// checkPO verifies PO existence and PO-vendor consistency. No PO number on
// the invoice is a legitimate SKIPPED outcome, not a failure.
func (e *Engine) checkPO(ctx context.Context, inv *invoice.Invoice, vendorID string) (*erpPO, []invoice.RuleFinding, error) {
	var results []invoice.RuleFinding

	if inv.PONumber == "" {
		results = append(results, finding(RuleERPPO, invoice.FindingSkipped,
			"No PO, skipping PO checks.", invoice.SourceERP))
		return nil, results, nil
	}

	po, err := e.erp.GetPurchaseOrder(ctx, inv.PONumber)
	if iaerrors.IsNotFound(err) {
		results = append(results, finding(RuleERPPO, invoice.FindingFailed,
			fmt.Sprintf("PO '%s' not found.", inv.PONumber), invoice.SourceERP))
		return nil, results, nil
	}
	if err != nil {
		return nil, results, err
	}

	results = append(results, finding(RuleERPPO, invoice.FindingPassed,
		fmt.Sprintf("PO '%s' is valid.", inv.PONumber), invoice.SourceERP))

	if po.VendorID != vendorID {
		results = append(results, finding(RulePOVendorMatch, invoice.FindingFailed,
			fmt.Sprintf("PO vendor %s does not match invoice vendor %s", po.VendorID, vendorID),
			invoice.SourceERP))
	} else {
		results = append(results, finding(RulePOVendorMatch, invoice.FindingPassed,
			"PO vendor matches.", invoice.SourceERP))
	}

	items := make(map[string]struct{}, len(po.LineItems))
	for _, li := range po.LineItems {
		items[li.ItemCode] = struct{}{}
	}
	return &erpPO{number: po.PONumber, items: items}, results, nil
}

// erpPO is the slice of PO data the line-item checks need.
type erpPO struct {
	number string
	items  map[string]struct{}
}

// checkLineItems verifies SKU existence for each line item and, when a PO
// was resolved, that the item appears on it.
func (e *Engine) checkLineItems(ctx context.Context, inv *invoice.Invoice, po *erpPO) ([]invoice.RuleFinding, error) {
	var results []invoice.RuleFinding

	for i, item := range inv.LineItems {
		desc := item.Description
		if desc == "" {
			desc = fmt.Sprintf("Item %d", i+1)
		}
		prefix := fmt.Sprintf("Line Item %d '%s'", i+1, desc)

		if item.ItemID == "" {
			results = append(results, finding(prefix+" SKU Check", invoice.FindingFailed,
				"Missing SKU.", invoice.SourceERP))
			continue
		}

		_, err := e.erp.GetSKU(ctx, item.ItemID)
		if iaerrors.IsNotFound(err) {
			results = append(results, finding(prefix+" SKU Check", invoice.FindingFailed,
				fmt.Sprintf("SKU '%s' not found in ERP", item.ItemID), invoice.SourceERP))
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, finding(prefix+" SKU Check", invoice.FindingPassed,
			fmt.Sprintf("SKU '%s' exists.", item.ItemID), invoice.SourceERP))

		if po != nil {
			if _, ok := po.items[item.ItemID]; !ok {
				results = append(results, finding(prefix+" PO Check", invoice.FindingFailed,
					"Item not in PO.", invoice.SourceERP))
				continue
			}
			results = append(results, finding(prefix+" PO Check", invoice.FindingPassed,
				"Item matches PO.", invoice.SourceERP))
		}
	}

	return results, nil
}

func (e *Engine) erpError(err error) invoice.RuleFinding {
	e.logger.Warn("ERP validation degraded", logging.Err(err))
	return finding(RuleERPValidation, invoice.FindingFailed,
		fmt.Sprintf("Error during ERP validation: %v", err), invoice.SourceERP)
}
