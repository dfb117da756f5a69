// Package mcptool exposes the heading outline builder as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/outline"
	"github.com/dgallion1/outliner/internal/presenter"
	"github.com/dgallion1/outliner/internal/scanner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// HTMLRequest is the argument set of the outline_html tool.
type HTMLRequest struct {
	HTML            string `json:"html"`
	IncludeHiddenAT bool   `json:"include_hidden_at"`
}

// MarkdownRequest is the argument set of the outline_markdown tool.
type MarkdownRequest struct {
	Markdown string `json:"markdown"`
}

// OutlineResponse is the JSON text returned by both tools.
type OutlineResponse struct {
	Title   string          `json:"title,omitempty"`
	Count   int             `json:"count"`
	Summary string          `json:"summary"`
	Nodes   []*outline.Node `json:"nodes"`
}

// NewServer creates an MCP server with the outline tools registered.
func NewServer(version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Heading Outliner",
		version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("outline_html",
		mcp.WithDescription("Build the heading tree of an HTML page the way a screen reader navigates it"),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("Full HTML document or fragment"),
		),
		mcp.WithBoolean("include_hidden_at",
			mcp.Description("Also list headings hidden on screen but exposed to assistive technology"),
		),
	), mcp.NewTypedToolHandler(htmlHandler(log)))

	s.AddTool(mcp.NewTool("outline_markdown",
		mcp.WithDescription("Build the heading tree of a Markdown document"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown source"),
		),
	), mcp.NewTypedToolHandler(markdownHandler(log)))

	return s
}

// Handler serves s over streamable HTTP at endpoint.
func Handler(s *server.MCPServer, endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(endpoint))
}

func htmlHandler(log *slog.Logger) func(context.Context, mcp.CallToolRequest, HTMLRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args HTMLRequest) (*mcp.CallToolResult, error) {
		if strings.TrimSpace(args.HTML) == "" {
			return mcp.NewToolResultError("html is required"), nil
		}
		sc := &scanner.HTMLScanner{}
		page, err := sc.Scan(strings.NewReader(args.HTML), "page.html")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scan html: %v", err)), nil
		}
		log.Debug("mcp outline_html", "records", len(page.Headings))
		return respond(page, heading.Options{IncludeHiddenAT: args.IncludeHiddenAT})
	}
}

func markdownHandler(log *slog.Logger) func(context.Context, mcp.CallToolRequest, MarkdownRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args MarkdownRequest) (*mcp.CallToolResult, error) {
		if strings.TrimSpace(args.Markdown) == "" {
			return mcp.NewToolResultError("markdown is required"), nil
		}
		sc := &scanner.MarkdownScanner{}
		page, err := sc.Scan(strings.NewReader(args.Markdown), "document.md")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scan markdown: %v", err)), nil
		}
		log.Debug("mcp outline_markdown", "records", len(page.Headings))
		return respond(page, heading.Options{})
	}
}

func respond(page *scanner.Page, opts heading.Options) (*mcp.CallToolResult, error) {
	res := outline.New(page.Headings, opts)
	data, err := json.Marshal(OutlineResponse{
		Title:   page.Title,
		Count:   res.Count,
		Summary: presenter.Summary(res.Count),
		Nodes:   res.Nodes,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
