// Package cmd provides the CLI commands for the invaudit tool.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/auditkit/invaudit/config"
	"github.com/auditkit/invaudit/pkg/logging"
)

// Global flags shared by all commands.
var (
	cfgFile  string
	logLevel string
	jsonLogs bool
)

// Deps holds the dependencies shared by commands. Tests inject stubs.
type Deps struct {
	// LoadConfig loads the effective configuration.
	LoadConfig func() (*config.Config, error)
}

// DefaultDeps returns the production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		LoadConfig: func() (*config.Config, error) {
			return config.Load(cfgFile)
		},
	}
}

// NewRootCommand creates the invaudit root command with all subcommands.
func NewRootCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}

	cmd := &cobra.Command{
		Use:   "invaudit",
		Short: "AI invoice audit pipeline",
		Long: `invaudit audits incoming invoice documents: it extracts structured
data, validates it against internal, ERP and anomaly rules, produces an
audit report (JSON + HTML), and routes each invoice to automatic
acceptance or human review.

Examples:
  # Watch the inbox and process invoices as they arrive
  invaudit monitor

  # Run one document through the pipeline
  invaudit process data/incoming/inv_001.json

  # Finalize a human review decision
  invaudit review inv_001 --decision APPROVE --feedback "verified"

  # Run the mock ERP master-data service
  invaudit erp serve --addr :8000`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetGlobal(logging.NewLogger(&logging.Config{
				Level:       logging.Level(logLevel),
				ServiceName: "invaudit",
				JSONFormat:  jsonLogs,
			}))
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: invaudit.yaml if present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON logs instead of console output")

	cmd.AddCommand(NewMonitorCommand(deps))
	cmd.AddCommand(NewProcessCommand(deps))
	cmd.AddCommand(NewReviewCommand(deps))
	cmd.AddCommand(NewERPCommand(deps))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
