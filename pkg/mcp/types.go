package mcp

import "context"

// ToolDefinition describes one callable tool for discovery responses.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// CallToolParams is the params payload of a tools/call request.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse is the uniform envelope returned for every tool call,
// success or failure.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

// ContentBlock is one typed block of response content. This server only
// emits text blocks.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextContent builds a text content block.
func TextContent(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ToolService is the dispatch surface the protocol server binds to: tool
// discovery, name validation, and execution.
type ToolService interface {
	// Tools returns the catalog in its fixed, caller-visible order.
	Tools() []ToolDefinition

	// Exists reports whether name identifies a known tool.
	Exists(name string) bool

	// Call executes the named tool and always returns an envelope, never an
	// error: failures are reported inside the envelope.
	Call(ctx context.Context, name string, args map[string]interface{}) *ToolResponse
}
