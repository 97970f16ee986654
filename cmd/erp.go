package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auditkit/invaudit/pkg/erp/erpserver"
	"github.com/auditkit/invaudit/pkg/logging"
)

// ERP serve command flags.
var (
	erpAddr    string
	erpDataDir string
)

// NewERPCommand creates the erp command group.
func NewERPCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erp",
		Short: "Run the mock ERP master-data service",
	}
	cmd.AddCommand(newERPServeCommand(deps))
	return cmd
}

func newERPServeCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve vendor, PO and SKU master data over HTTP",
		Long: `Serve the mock ERP master-data API the validation rule engine queries:
vendor lookups by name and id, purchase orders, and SKUs.

With --data, the vendors.json, po_records.json and sku_master.json files
in that directory seed the store; otherwise a small built-in sample data
set is served.

Examples:
  invaudit erp serve
  invaudit erp serve --addr :8000 --data ./erp-data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.MustGlobal()

			store := erpserver.SampleStore()
			if erpDataDir != "" {
				loaded, err := erpserver.LoadStore(erpDataDir)
				if err != nil {
					return fmt.Errorf("loading ERP data from %s: %w", erpDataDir, err)
				}
				store = loaded
			}

			vendors, pos, skus := store.Counts()
			logger.Info("Starting mock ERP service",
				logging.F("addr", erpAddr),
				logging.F("vendors", vendors),
				logging.F("purchase_orders", pos),
				logging.F("skus", skus))

			return erpserver.New(store, logger).ListenAndServe(erpAddr)
		},
	}

	cmd.Flags().StringVar(&erpAddr, "addr", ":8000", "Listen address")
	cmd.Flags().StringVar(&erpDataDir, "data", "", "Directory with vendors.json, po_records.json, sku_master.json")

	return cmd
}
