/*
Package main is the entry point for the speakeasy CLI.

speakeasy is a minimal statistical chat-response engine. It learns scored
(prompt, response) examples and replies to new prompts by pooling every learned
prompt that shares a substring with the input.

Usage:
  speakeasy [command]

Available Commands:
  learn       Learn a response as a reply to a prompt
  reply       Reply to a prompt with the best learned response
  chat        Chat interactively, optionally rating each reply
  import      Merge a JSON knowledge file into the configured store
  export      Export the knowledge store as JSON
  stats       Show knowledge store statistics
  serve       Run the MCP server (stdio transport)
  version     Show version information

Examples:
  speakeasy learn "hello" "hi there"
  speakeasy reply "hello world"
  speakeasy chat --train --backend sqlite --store knowledge.db
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/speakeasy/internal/cli"
	"github.com/khanglvm/speakeasy/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd()
	rootCmd.Version = version.Get().String()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
