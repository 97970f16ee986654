package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auditkit/invaudit/pkg/review"
)

// Review command flags.
var (
	reviewDecision string
	reviewFeedback string
	reviewReviewer string
)

// NewReviewCommand creates the review command.
func NewReviewCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <invoice-id>",
		Short: "Finalize a human review decision for a pending invoice",
		Long: `Apply a human review decision to an invoice in pending_review: the
report is stamped with the decision and feedback, indexed, and the
invoice directory moves to approved or rejected.

An indexing failure does not block the move; it is reported and the
invoice is still filed.

Examples:
  invaudit review inv_2024_001 --decision APPROVE --feedback "verified against PO"
  invaudit review inv_2024_002 --decision REJECT --feedback "totals do not add up"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(deps)
			if err != nil {
				return err
			}
			defer rt.close()

			reviewer := reviewReviewer
			if reviewer == "" {
				reviewer = rt.cfg.ReviewerName
			}

			wf := review.New(review.Dirs{
				Review:   rt.cfg.Directories.Review,
				Approved: rt.cfg.Directories.Approved,
				Rejected: rt.cfg.Directories.Rejected,
			}, rt.index, rt.events, rt.logger)

			res, err := wf.Finalize(cmd.Context(), review.Request{
				InvoiceID: args[0],
				Decision:  review.Decision(strings.ToUpper(reviewDecision)),
				Feedback:  reviewFeedback,
				Reviewer:  reviewer,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", args[0], strings.ToUpper(reviewDecision), res.TargetDir)
			if res.IndexErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: indexing failed: %v\n", res.IndexErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reviewDecision, "decision", "", "Review decision: APPROVE or REJECT (required)")
	cmd.Flags().StringVar(&reviewFeedback, "feedback", "", "Reviewer feedback (required)")
	cmd.Flags().StringVar(&reviewReviewer, "reviewer", "", "Reviewer name (default: from config)")
	_ = cmd.MarkFlagRequired("decision")
	_ = cmd.MarkFlagRequired("feedback")

	return cmd
}
