package erpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/auditkit/invaudit/pkg/erp"
)

// Seed file names expected inside the ERP data directory.
const (
	VendorsFile = "vendors.json"
	POFile      = "po_records.json"
	SKUFile     = "sku_master.json"
)

// LoadStore reads the three seed files from dir and builds a Store.
// Each file must contain a JSON array of the corresponding record type.
func LoadStore(dir string) (*Store, error) {
	var vendors []erp.Vendor
	if err := loadJSON(filepath.Join(dir, VendorsFile), &vendors); err != nil {
		return nil, err
	}

	var pos []erp.PurchaseOrder
	if err := loadJSON(filepath.Join(dir, POFile), &pos); err != nil {
		return nil, err
	}

	var skus []erp.SKU
	if err := loadJSON(filepath.Join(dir, SKUFile), &skus); err != nil {
		return nil, err
	}

	return NewStore(vendors, pos, skus), nil
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ERP seed %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing ERP seed %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SampleStore returns a small built-in data set for demos and tests.
func SampleStore() *Store {
	return NewStore(
		[]erp.Vendor{
			{VendorID: "V-001", VendorName: "Tech Solutions Ltd.", Country: "US", Currency: "USD"},
			{VendorID: "V-002", VendorName: "Baumann Industrie GmbH", Country: "DE", Currency: "EUR"},
			{VendorID: "V-003", VendorName: "Northwind Traders", Country: "GB", Currency: "GBP"},
		},
		[]erp.PurchaseOrder{
			{
				PONumber: "PO-98765",
				VendorID: "V-001",
				LineItems: []erp.POLineItem{
					{ItemCode: "SKU-A123", Description: "Enterprise Software License - 1 Year", Qty: 1, UnitPrice: 2000, Currency: "USD"},
					{ItemCode: "SKU-B456", Description: "Premium Support Plan", Qty: 2, UnitPrice: 500, Currency: "USD"},
				},
			},
			{
				PONumber: "PO-55001",
				VendorID: "V-002",
				LineItems: []erp.POLineItem{
					{ItemCode: "SKU-C789", Description: "Hydraulikpumpe Serie 7", Qty: 4, UnitPrice: 1250, Currency: "EUR"},
				},
			},
		},
		[]erp.SKU{
			{ItemCode: "SKU-A123", Category: "Software", UOM: "EA", GSTRate: 10},
			{ItemCode: "SKU-B456", Category: "Services", UOM: "EA", GSTRate: 10},
			{ItemCode: "SKU-C789", Category: "Hardware", UOM: "EA", GSTRate: 19},
		},
	)
}
