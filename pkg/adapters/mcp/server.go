// Package mcp exposes the briefing agent as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/briefing"
	"github.com/aretw0/briefing/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	TasksURI = "briefing://tasks"
	TreeURI  = "briefing://tree"
)

// Agent defines the interface required by the MCP server.
type Agent interface {
	Run(ctx context.Context, location, topic string, count int) (string, error)
	TaskStates() map[string]map[string]any
	Tree() briefing.NodeDescription
}

// Server wraps the Agent and exposes it as an MCP Server.
type Server struct {
	agent     Agent
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(agent Agent, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		agent:     agent,
		logger:    logger,
		mcpServer: server.NewMCPServer("briefing-mcp", briefing.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: daily_briefing
	s.mcpServer.AddTool(mcp.NewTool("daily_briefing",
		mcp.WithDescription("Generate a daily briefing with the weather of a location and the top headlines of a topic."),
		mcp.WithString("location", mcp.Description("City to report the weather for (optional)")),
		mcp.WithString("topic", mcp.Description("News topic: technology, world or business (optional)")),
		mcp.WithNumber("count", mcp.Description("Number of headlines (optional)")),
	), s.handleBriefing)

	// TOOL: task_states
	s.mcpServer.AddTool(mcp.NewTool("task_states",
		mcp.WithDescription("Get the diagnostic state each task kept from the last briefing."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.agent.TaskStates())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleBriefing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := request.GetString("location", "")
	topic := request.GetString("topic", "")
	count := request.GetInt("count", 0)
	if count < 0 {
		return mcp.NewToolResultError("count must not be negative"), nil
	}

	text, err := s.agent.Run(ctx, location, topic, count)
	if err != nil {
		var tef *domain.TreeEvaluationFailure
		if errors.As(err, &tef) {
			s.logger.Warn("MCP briefing failed", "stage", tef.Stage, "node", tef.Node, "err", err)
			return mcp.NewToolResultError(briefing.Describe(err)), nil
		}
		return nil, fmt.Errorf("briefing failed: %w", err)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerResources() {
	// EXPOSE: briefing://tasks
	s.mcpServer.AddResource(mcp.NewResource(TasksURI, "Task States",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(TasksURI, s.agent.TaskStates())
	})

	// EXPOSE: briefing://tree
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Briefing Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(TreeURI, s.agent.Tree())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
