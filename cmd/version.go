package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auditkit/invaudit/pkg/buildinfo"
)

var versionJSON bool

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(buildinfo.Get("invaudit"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invaudit %s\n", buildinfo.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
	return cmd
}
