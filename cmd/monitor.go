package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/monitor"
)

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch the inbox and process invoices as they arrive",
		Long: `Watch the incoming directory for new invoice documents and run each
through the audit pipeline, bounded by a fixed-size worker pool.

Files already in the inbox at startup are processed first. Documents
whose content was processed before are skipped. Stop with Ctrl-C;
in-flight invoices finish before the process exits.

Examples:
  invaudit monitor
  invaudit monitor --log-level debug
  INVAUDIT_WORKERS=10 invaudit monitor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(deps)
			if err != nil {
				return err
			}
			defer rt.close()

			m := monitor.New(monitor.Options{
				Dir:        rt.cfg.Directories.Incoming,
				Extensions: rt.cfg.Monitor.Extensions,
				Debounce:   rt.cfg.Monitor.DebounceDelay,
				Workers:    rt.cfg.Monitor.WorkerCount,
			}, monitor.ProcessFunc(func(ctx context.Context, path string) error {
				_, err := rt.pipe.Run(ctx, path)
				return err
			}), rt.hashes, rt.events, rt.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := m.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			m.Wait()
			rt.logger.Info("Monitor stopped", logging.F("inbox", rt.cfg.Directories.Incoming))
			return nil
		},
	}
}
