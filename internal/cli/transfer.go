package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/khanglvm/speakeasy/internal/knowledge"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the 'import' command for merging a store file.
func NewImportCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a JSON knowledge file into the configured store",
		Long: `Merge FILE, in the store file format, into the configured knowledge store.

Each prompt in FILE replaces that prompt's responses in the store wholesale;
prompts not in FILE are left untouched. Unlike the store itself, a malformed
FILE is an error rather than an empty knowledge base.

Format:
  {"hello": {"hi there": [3.5, 4], "go away": [0.0, 1]}}`,
		Example: `  speakeasy import backup.json
  speakeasy import speakeasy_data.json --backend sqlite --store knowledge.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			partial, err := knowledge.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to parse import file %s: %w", args[0], err)
			}

			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.store.Save(partial); err != nil {
				return fmt.Errorf("failed to save knowledge: %w", err)
			}

			stats := partial.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d prompt(s), %d response(s)\n", stats.Prompts, stats.Responses)
			return nil
		},
	}

	return cmd
}

// NewExportCmd creates the 'export' command for dumping the store as JSON.
func NewExportCmd(opts *GlobalOptions) *cobra.Command {
	var outputFile string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the knowledge store as JSON",
		Long: `Write the configured knowledge store in the store file format. The output
can be imported into any backend with 'speakeasy import'.`,
		Example: `  speakeasy export
  speakeasy export --pretty -o backup.json
  speakeasy export --backend bolt --store knowledge.db > knowledge.json`,
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
			data, err := knowledge.Encode(k)
			if err != nil {
				return fmt.Errorf("failed to encode knowledge: %w", err)
			}
			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return fmt.Errorf("failed to format knowledge: %w", err)
				}
				data = buf.Bytes()
			}
			data = append(data, '\n')

			if outputFile == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outputFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d prompt(s) to %s\n", k.Len(), outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the JSON output")

	return cmd
}
