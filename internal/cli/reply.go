package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/spf13/cobra"
)

// NewReplyCmd creates the 'reply' command for inferring a response.
func NewReplyCmd(opts *GlobalOptions) *cobra.Command {
	var explain bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "reply PROMPT",
		Short: "Reply to a prompt with the best learned response",
		Long: `Print the learned response with the highest smoothed success estimate
for PROMPT. If nothing has been learned yet, PROMPT is echoed back.

--explain lists every candidate with its pooled score, trial count and
estimate, best first.`,
		Example: `  speakeasy reply "hello"
  speakeasy reply "hello world" --explain
  speakeasy reply "hello" --explain --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			if !explain {
				response, err := sess.engine.Reply(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, response)
				return nil
			}

			candidates, err := sess.engine.Explain(args[0])
			if err != nil {
				return err
			}
			return printCandidates(out, candidates, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show all candidates and their estimates")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output candidates as JSON (with --explain)")

	return cmd
}

// printCandidates writes candidates best first. The stable sort keeps
// accumulation order among equal estimates, so the first row is always the
// response Reply would pick.
func printCandidates(out io.Writer, candidates []engine.Candidate, jsonOutput bool) error {
	ranked := make([]engine.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Estimate > ranked[j].Estimate
	})

	if jsonOutput {
		data, err := json.MarshalIndent(ranked, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode candidates: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(ranked) == 0 {
		fmt.Fprintln(out, "No candidates (nothing learned yet); the prompt would be echoed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESPONSE\tSCORE\tTRIALS\tESTIMATE")
	for _, c := range ranked {
		fmt.Fprintf(w, "%s\t%.2f\t%d\t%.4f\n", c.Response, c.Entry.Score, c.Entry.Trials, c.Estimate)
	}
	return w.Flush()
}
