// Package erp provides the HTTP client for the ERP master-data service used
// by the validation rule engine, plus the record types it returns.
package erp

// Vendor is an ERP vendor master record.
type Vendor struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Country    string `json:"country"`
	Currency   string `json:"currency"`
}

// POLineItem is a single line on a purchase order.
type POLineItem struct {
	ItemCode    string  `json:"item_code"`
	Description string  `json:"description"`
	Qty         int     `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	Currency    string  `json:"currency"`
}

// PurchaseOrder is an ERP purchase order record.
type PurchaseOrder struct {
	PONumber  string       `json:"po_number"`
	VendorID  string       `json:"vendor_id"`
	LineItems []POLineItem `json:"line_items"`
}

// ContainsItem reports whether the PO has a line for the given item code.
func (po *PurchaseOrder) ContainsItem(itemCode string) bool {
	for _, li := range po.LineItems {
		if li.ItemCode == itemCode {
			return true
		}
	}
	return false
}

// SKU is an ERP item master record.
type SKU struct {
	ItemCode string `json:"item_code"`
	Category string `json:"category"`
	UOM      string `json:"uom"`
	GSTRate  int    `json:"gst_rate"`
}
