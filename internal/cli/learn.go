package cli

import (
	"fmt"

	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/spf13/cobra"
)

// NewLearnCmd creates the 'learn' command for recording a scored response.
func NewLearnCmd(opts *GlobalOptions) *cobra.Command {
	var score float64

	cmd := &cobra.Command{
		Use:   "learn PROMPT RESPONSE",
		Short: "Learn a response as a reply to a prompt",
		Long: `Record RESPONSE as a reply to PROMPT with a score between 0 and 1.

Use 1 for a perfect reply and 0 for one that makes no sense; anything in
between is allowed. Scores outside the range are clamped. Repeated learning of
the same pair accumulates score and trial count.`,
		Example: `  speakeasy learn "hello" "hi there"
  speakeasy learn "hello" "go away" --score 0
  speakeasy learn "how are you" "fine, thanks" --score 0.8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.engine.Learn(args[0], args[1], score); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Learned %q → %q (score %.2f)\n", args[0], args[1], engine.Clamp(score))
			return nil
		},
	}

	cmd.Flags().Float64Var(&score, "score", engine.DefaultScore, "Effectiveness of the response, 0 to 1")

	return cmd
}
