/*
Package mcp exposes the speakeasy engine as an MCP server.

Two tools are registered:
  - speakeasy_reply: reply to a prompt with the best learned response
  - speakeasy_learn: record a scored response to a prompt

Example usage:

	server := mcp.NewServer(eng, logger)
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
	    return err
	}
*/
package mcp

import (
	"context"
	"fmt"

	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/khanglvm/speakeasy/internal/version"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server wraps an MCP SDK server bound to an engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
	logger    *zap.Logger
}

// NewServer creates a server with the speakeasy tools registered.
func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "speakeasy",
		Version: version.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		engine:    eng,
		logger:    logger,
	}
	s.registerTools()

	return s
}

// Run serves a single session over transport until the client disconnects
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name: "speakeasy_reply",
		Description: `Reply to a prompt with the best response learned so far.

Every learned prompt containing any substring of the input contributes its
responses; the response with the highest smoothed success estimate wins.
If nothing has been learned, the prompt is returned unchanged.`,
	}, s.handleReply)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name: "speakeasy_learn",
		Description: `Learn a response as a reply to a prompt.

Score is the effectiveness of the response between 0 (makes no sense) and
1 (perfect), default 1. Values outside the range are clamped.`,
	}, s.handleLearn)
}

// ReplyParams defines parameters for the speakeasy_reply tool.
type ReplyParams struct {
	Prompt string `json:"prompt" jsonschema:"Prompt to reply to"`
}

// LearnParams defines parameters for the speakeasy_learn tool.
type LearnParams struct {
	Prompt   string   `json:"prompt" jsonschema:"Prompt the response answers"`
	Response string   `json:"response" jsonschema:"Response to associate with the prompt"`
	Score    *float64 `json:"score,omitempty" jsonschema:"Effectiveness between 0 and 1 (default 1)"`
}

func (s *Server) handleReply(ctx context.Context, req *mcpsdk.CallToolRequest, params *ReplyParams) (*mcpsdk.CallToolResult, any, error) {
	response, err := s.engine.Reply(params.Prompt)
	if err != nil {
		s.logger.Error("tool failed", zap.String("tool", "speakeasy_reply"), zap.Error(err))
		return nil, nil, err
	}
	return textResult(response), nil, nil
}

func (s *Server) handleLearn(ctx context.Context, req *mcpsdk.CallToolRequest, params *LearnParams) (*mcpsdk.CallToolResult, any, error) {
	score := engine.DefaultScore
	if params.Score != nil {
		score = *params.Score
	}

	if err := s.engine.Learn(params.Prompt, params.Response, score); err != nil {
		s.logger.Error("tool failed", zap.String("tool", "speakeasy_learn"), zap.Error(err))
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Learned response (score %.2f)", engine.Clamp(score))), nil, nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}
}
