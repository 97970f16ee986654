package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/hashstore"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/pipeline"
)

// NewProcessCommand creates the process command.
func NewProcessCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>",
		Short: "Run one invoice document through the audit pipeline",
		Long: `Run a single invoice document through extraction, validation and
reporting, then file it under auto-processed or pending_review.

The document is moved out of its current location into the invoice
directory, together with its sidecar metadata if one exists.

Examples:
  invaudit process data/incoming/inv_2024_001.json
  invaudit process /tmp/scan.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(deps)
			if err != nil {
				return err
			}
			defer rt.close()

			// Same content-hash dedup the monitor applies, so a one-shot
			// run cannot refile content the pipeline already completed.
			hash, err := hashstore.HashFile(args[0])
			if err != nil {
				return fmt.Errorf("hashing %s: %w", args[0], err)
			}
			seen, err := rt.hashes.Contains(cmd.Context(), hash)
			if err != nil {
				return fmt.Errorf("hash store lookup: %w", err)
			}
			if seen {
				return fmt.Errorf("%s: content already processed: %w", args[0], iaerrors.ErrDuplicate)
			}

			st, err := rt.pipe.Run(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("processing %s: %w", args[0], err)
			}
			if err := rt.hashes.Add(cmd.Context(), hash); err != nil {
				rt.logger.Error("Recording processed hash failed", logging.Err(err))
			}

			outcome := "filed for review"
			if pipeline.Route(st) == pipeline.OutcomeSuccess {
				outcome = "auto-accepted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", st.InvoiceID, outcome, st.OutputDir)
			return nil
		},
	}
}
