// Package tools contains the tool catalog, the engine lifecycle manager, and
// the request dispatcher that routes tool calls to engine operations.
package tools

import "github.com/pagehand/pagehand/pkg/mcp"

// Tool names.
const (
	ToolNavigate = "navigate"
	ToolAct      = "act"
	ToolExtract  = "extract"
	ToolObserve  = "observe"
)

// Registry is the static catalog of supported tools. It is built once at
// startup and never mutated; List returns definitions in a fixed order.
type Registry struct {
	defs   []mcp.ToolDefinition
	byName map[string]struct{}
}

// NewRegistry builds the catalog of the four browser-automation tools.
func NewRegistry() *Registry {
	defs := []mcp.ToolDefinition{
		{
			Name:        ToolNavigate,
			Description: "Navigate the browser to a URL",
			InputSchema: objectSchema(map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "URL to navigate to, including protocol",
				},
			}, []string{"url"}),
		},
		{
			Name: ToolAct,
			Description: "Perform an action on the current web page described in natural " +
				"language, e.g. 'click the login button' or 'type hello into the search box'",
			InputSchema: objectSchema(map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "The action to perform",
				},
				"variables": map[string]interface{}{
					"type": "object",
					"description": "Values substituted into the action text via %name% " +
						"placeholders; useful for keeping sensitive input out of the action string",
				},
			}, []string{"action"}),
		},
		{
			Name: ToolExtract,
			Description: "Extract structured data from the current web page according to " +
				"an instruction and a JSON schema describing the expected shape",
			InputSchema: objectSchema(map[string]interface{}{
				"instruction": map[string]interface{}{
					"type":        "string",
					"description": "What to extract from the page",
				},
				"schema": map[string]interface{}{
					"type":        "object",
					"description": "JSON schema for the extracted data",
				},
			}, []string{"instruction", "schema"}),
		},
		{
			Name: ToolObserve,
			Description: "Observe the current web page and return elements relevant to an " +
				"instruction, e.g. to find actionable controls before acting",
			InputSchema: objectSchema(map[string]interface{}{
				"instruction": map[string]interface{}{
					"type":        "string",
					"description": "What to look for on the page",
				},
			}, []string{"instruction"}),
		},
	}

	byName := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		byName[def.Name] = struct{}{}
	}

	return &Registry{defs: defs, byName: byName}
}

// List returns the catalog in its fixed order.
func (r *Registry) List() []mcp.ToolDefinition {
	out := make([]mcp.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Exists reports whether name identifies a known tool.
func (r *Registry) Exists(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// objectSchema builds a JSON schema object with the given properties and
// required field names.
func objectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
