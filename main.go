// Command invaudit is the invoice audit pipeline CLI: it watches an inbox
// for invoice documents, audits each one against internal, ERP and anomaly
// rules, and files the results for automatic acceptance or human review.
package main

import (
	"os"

	"github.com/auditkit/invaudit/cmd"
)

func main() {
	if err := cmd.NewRootCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
