package cli

import (
	"encoding/json"
	"fmt"

	"github.com/khanglvm/speakeasy/internal/knowledge"
	"github.com/spf13/cobra"
)

// storeStats is the JSON shape printed by 'stats --json'.
type storeStats struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	knowledge.Stats
}

// NewStatsCmd creates the 'stats' command for summarizing the store.
func NewStatsCmd(opts *GlobalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge store statistics",
		Example: `  speakeasy stats
  speakeasy stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			k, err := knowledge.LoadOrEmpty(sess.store)
			if err != nil {
				return err
			}
			st := storeStats{
				Backend: sess.cfg.Store.Backend,
				Path:    sess.cfg.StorePath(),
				Stats:   k.Stats(),
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(st, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintln(out, "Knowledge Store")
			fmt.Fprintln(out, "===============")
			fmt.Fprintf(out, "Backend:   %s\n", st.Backend)
			fmt.Fprintf(out, "Path:      %s\n", st.Path)
			fmt.Fprintf(out, "Prompts:   %d\n", st.Prompts)
			fmt.Fprintf(out, "Responses: %d\n", st.Responses)
			fmt.Fprintf(out, "Trials:    %d\n", st.Trials)
			if st.Trials > 0 {
				fmt.Fprintf(out, "Mean score: %.3f\n", st.Score/float64(st.Trials))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
