package mcptool

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>Docs</title></head><body>
<h1>Main</h1>
<h2>Install</h2>
<h2 class="sr-only">Skip links</h2>
</body></html>`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, result *mcp.CallToolResult) OutlineResponse {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var resp OutlineResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func call[A any](t *testing.T, handler func(context.Context, mcp.CallToolRequest, A) (*mcp.CallToolResult, error), request mcp.CallToolRequest, args A) OutlineResponse {
	t.Helper()
	result, err := handler(context.Background(), request, args)
	require.NoError(t, err)
	return decode(t, result)
}

func TestNewServer(t *testing.T) {
	require.NotNil(t, NewServer("test", discard()))
	require.NotNil(t, Handler(NewServer("test", discard()), "/mcp"))
}

func TestHTMLHandler(t *testing.T) {
	handler := htmlHandler(discard())
	args := HTMLRequest{HTML: page}
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "outline_html", Arguments: args},
	}

	resp := call(t, handler, request, args)
	require.Equal(t, "Docs", resp.Title)
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "2 headings", resp.Summary)
	require.Len(t, resp.Nodes, 1)
	require.Equal(t, "1: Main (1)", resp.Nodes[0].Label)

	args.IncludeHiddenAT = true
	resp = call(t, handler, request, args)
	require.Equal(t, 3, resp.Count)
	require.Equal(t, "1: Main (2)", resp.Nodes[0].Label)
}

func TestMarkdownHandler(t *testing.T) {
	handler := markdownHandler(discard())
	args := MarkdownRequest{Markdown: "# Guide\n\n## One\n\n### Deep\n\n## Two\n"}
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "outline_markdown", Arguments: args},
	}

	resp := call(t, handler, request, args)
	require.Equal(t, 4, resp.Count)
	require.Len(t, resp.Nodes, 1)
	require.Equal(t, 3, resp.Nodes[0].Descendants)
	require.Len(t, resp.Nodes[0].Children, 2)
}

func TestHandlerValidation(t *testing.T) {
	result, err := htmlHandler(discard())(context.Background(), mcp.CallToolRequest{}, HTMLRequest{})
	require.NoError(t, err)
	require.True(t, result.IsError)

	result, err = markdownHandler(discard())(context.Background(), mcp.CallToolRequest{}, MarkdownRequest{Markdown: "  "})
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestNoHeadings(t *testing.T) {
	args := HTMLRequest{HTML: "<p>nothing here</p>"}
	resp := call(t, htmlHandler(discard()), mcp.CallToolRequest{}, args)
	require.Equal(t, 0, resp.Count)
	require.Equal(t, "No headings found", resp.Summary)
	require.Empty(t, resp.Nodes)
}

