package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/khanglvm/speakeasy/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
//
// The server exposes two tools via stdio transport:
// - speakeasy_reply, speakeasy_learn
func NewServeCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the speakeasy MCP server using stdio transport.

This server exposes 2 tools to AI clients:
  • speakeasy_reply - Reply to a prompt with the best learned response
  • speakeasy_learn - Learn a scored response to a prompt

Requests are read from stdin one JSON-RPC message per line; logs go to stderr.`,
		Example: `  # Run directly
  speakeasy serve

  # Use a SQLite store
  speakeasy serve --backend sqlite --store ~/.speakeasy/knowledge.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			server := mcp.NewServer(sess.engine, sess.logger.Named("mcp"))
			return runServe(cmd.Context(), server, sess.logger)
		},
	}

	return cmd
}

// runServe runs the server until stdin closes or SIGINT/SIGTERM/SIGQUIT
// arrives.
func runServe(ctx context.Context, server *mcp.Server, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	err := server.Run(ctx, &mcpsdk.StdioTransport{})
	if ctx.Err() != nil {
		logger.Info("received signal, shutting down")
		return nil
	}
	return err
}
